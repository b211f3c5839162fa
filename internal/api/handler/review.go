package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/api/middleware"
	"github.com/sentryvision/review-service/internal/domain"
	"github.com/sentryvision/review-service/internal/repository"
	"github.com/sentryvision/review-service/internal/service"
)

const maxPageSize = 100

type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// PaginatedResponse wraps listings
type PaginatedResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Pages int         `json:"pages"`
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return err
	}

	var input service.CreateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	review, err := h.reviews.Create(c.Context(), input, user.ID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	var input service.UpdateReviewInput
	if err := c.BodyParser(&input); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	review, err := h.reviews.Update(c.Context(), id, input, *user)
	if err != nil {
		return err
	}

	return c.JSON(review)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if err := h.reviews.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AssignInput optionally names the reviewer; defaults to the caller
type AssignInput struct {
	ReviewerID *uuid.UUID `json:"reviewer_id,omitempty"`
}

func (h *ReviewHandler) Assign(c *fiber.Ctx) error {
	user, err := middleware.GetUser(c)
	if err != nil {
		return err
	}

	detectionID, err := uuid.Parse(c.Params("detection_id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	var input AssignInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
	}

	reviewerID := user.ID
	if input.ReviewerID != nil {
		// Only admins hand work to other reviewers
		if *input.ReviewerID != user.ID && user.Role != domain.RoleAdmin {
			return domain.ErrForbidden
		}
		reviewerID = *input.ReviewerID
	}

	review, err := h.reviews.Assign(c.Context(), detectionID, reviewerID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reviews.Stats(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(stats)
}

func (h *ReviewHandler) Workload(c *fiber.Ctx) error {
	reviewerID, err := uuid.Parse(c.Params("reviewer_id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	workload, err := h.reviews.Workload(c.Context(), reviewerID)
	if err != nil {
		return err
	}

	return c.JSON(workload)
}

func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	review, err := h.reviews.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(review)
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = 20
	}

	filter := repository.ReviewFilter{
		Offset: (page - 1) * size,
		Limit:  size,
	}
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if reviewer := c.Query("reviewer_id"); reviewer != "" {
		reviewerID, err := uuid.Parse(reviewer)
		if err != nil {
			return domain.ErrBadRequest.WithError(err)
		}
		filter.ReviewerID = &reviewerID
	}

	reviews, total, err := h.reviews.List(c.Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(PaginatedResponse{
		Items: reviews,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: (total + size - 1) / size,
	})
}

func (h *ReviewHandler) ListPending(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > maxPageSize {
		limit = 50
	}

	reviews, err := h.reviews.ListPending(c.Context(), limit)
	if err != nil {
		return err
	}

	return c.JSON(reviews)
}
