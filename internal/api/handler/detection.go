package handler

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/domain"
	"github.com/sentryvision/review-service/internal/repository"
	"github.com/sentryvision/review-service/internal/service"
)

type DetectionHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewDetectionHandler(reviews *service.ReviewService, logger *slog.Logger) *DetectionHandler {
	return &DetectionHandler{
		reviews: reviews,
		logger:  logger,
	}
}

func (h *DetectionHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	detection, err := h.reviews.GetDetection(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(detection)
}

func (h *DetectionHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = 20
	}

	filter := repository.DetectionFilter{
		UnreviewedOnly: c.QueryBool("unreviewed_only", false),
		Offset:         (page - 1) * size,
		Limit:          size,
	}
	if raw := c.Query("is_anomaly"); raw != "" {
		isAnomaly, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
		filter.IsAnomaly = &isAnomaly
	}
	if raw := c.Query("min_confidence"); raw != "" {
		minConfidence, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
		filter.MinConfidence = &minConfidence
	}

	detections, total, err := h.reviews.ListDetections(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(PaginatedResponse{
		Items: detections,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: (total + size - 1) / size,
	})
}
