package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/domain"
	"github.com/sentryvision/review-service/internal/repository"
)

// Notifier is the fire-and-forget notification surface the review flow
// triggers. Delivery failures never roll back a persisted review.
type Notifier interface {
	NotifyNewDetection(detectionID uuid.UUID, isAnomaly bool, confidence float64)
	NotifyReviewCompleted(reviewID, detectionID uuid.UUID, verdict string)
	NotifyUser(userID *uuid.UUID, message, severity string, data map[string]interface{})
}

// CreateReviewInput carries the fields a reviewer submits
type CreateReviewInput struct {
	DetectionID     uuid.UUID `json:"detection_id"`
	Status          string    `json:"review_status"`
	HumanVerdict    *string   `json:"human_verdict,omitempty"`
	ConfidenceLevel *int      `json:"confidence_level,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	DurationSeconds *int      `json:"review_duration_seconds,omitempty"`
}

// UpdateReviewInput carries partial updates; nil fields are left untouched
type UpdateReviewInput struct {
	Status          *string `json:"review_status,omitempty"`
	HumanVerdict    *string `json:"human_verdict,omitempty"`
	ConfidenceLevel *int    `json:"confidence_level,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	DurationSeconds *int    `json:"review_duration_seconds,omitempty"`
}

type ReviewService struct {
	reviews    repository.ReviewRepositoryInterface
	detections repository.DetectionRepositoryInterface
	notifier   Notifier
	logger     *slog.Logger
}

func NewReviewService(
	reviews repository.ReviewRepositoryInterface,
	detections repository.DetectionRepositoryInterface,
	notifier Notifier,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		detections: detections,
		notifier:   notifier,
		logger:     logger,
	}
}

// Create persists a new review for an existing detection and notifies
// reviewers/admins that the detection is under review.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput, reviewerID uuid.UUID) (*domain.Review, error) {
	detection, err := s.detections.GetByID(ctx, input.DetectionID)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = domain.ReviewPending
	}

	review := &domain.Review{
		DetectionID:     input.DetectionID,
		ReviewerID:      reviewerID,
		Status:          input.Status,
		HumanVerdict:    input.HumanVerdict,
		ConfidenceLevel: input.ConfidenceLevel,
		Notes:           input.Notes,
		DurationSeconds: input.DurationSeconds,
	}
	if err := review.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.notifier.NotifyNewDetection(detection.ID, detection.IsAnomaly, detection.ConfidenceScore)

	s.logger.Info("review created",
		slog.String("review_id", review.ID.String()),
		slog.String("detection_id", detection.ID.String()),
		slog.String("reviewer_id", reviewerID.String()),
	)

	return review, nil
}

// Update applies a partial update. Reviewers may only update their own
// reviews; admins may update any. Reaching a terminal status triggers a
// review_completed broadcast.
func (s *ReviewService) Update(ctx context.Context, id uuid.UUID, input UpdateReviewInput, actor domain.User) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleAdmin && review.ReviewerID != actor.ID {
		return nil, domain.ErrReviewOwnership
	}

	if input.Status != nil {
		review.Status = *input.Status
	}
	if input.HumanVerdict != nil {
		review.HumanVerdict = input.HumanVerdict
	}
	if input.ConfidenceLevel != nil {
		review.ConfidenceLevel = input.ConfidenceLevel
	}
	if input.Notes != nil {
		review.Notes = input.Notes
	}
	if input.DurationSeconds != nil {
		review.DurationSeconds = input.DurationSeconds
	}

	if err := review.Validate(); err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	if review.IsCompleted() {
		verdict := "unknown"
		if review.HumanVerdict != nil {
			verdict = *review.HumanVerdict
		}
		s.notifier.NotifyReviewCompleted(review.ID, review.DetectionID, verdict)
	}

	s.logger.Info("review updated",
		slog.String("review_id", review.ID.String()),
		slog.String("status", review.Status),
	)

	return review, nil
}

// Assign creates a pending review binding a detection to a reviewer and
// notifies that reviewer. A detection can hold at most one review.
func (s *ReviewService) Assign(ctx context.Context, detectionID, reviewerID uuid.UUID) (*domain.Review, error) {
	detection, err := s.detections.GetByID(ctx, detectionID)
	if err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForDetection(ctx, detectionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrReviewAlreadyExists
	}

	review := &domain.Review{
		DetectionID: detectionID,
		ReviewerID:  reviewerID,
		Status:      domain.ReviewPending,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.notifier.NotifyUser(&reviewerID, "detection assigned for review", "info", map[string]interface{}{
		"detection_id": detection.ID.String(),
		"review_id":    review.ID.String(),
	})

	s.logger.Info("review assigned",
		slog.String("review_id", review.ID.String()),
		slog.String("detection_id", detectionID.String()),
		slog.String("reviewer_id", reviewerID.String()),
	)

	return review, nil
}

// Delete removes a review. Role enforcement happens at the route.
func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("review deleted", slog.String("review_id", id.String()))
	return nil
}

func (s *ReviewService) Stats(ctx context.Context) (*domain.ReviewStats, error) {
	return s.reviews.Stats(ctx)
}

func (s *ReviewService) Workload(ctx context.Context, reviewerID uuid.UUID) (*domain.ReviewerWorkload, error) {
	return s.reviews.Workload(ctx, reviewerID)
}

func (s *ReviewService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return s.reviews.GetByID(ctx, id)
}

func (s *ReviewService) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, int, error) {
	return s.reviews.List(ctx, filter)
}

func (s *ReviewService) ListPending(ctx context.Context, limit int) ([]domain.Review, error) {
	return s.reviews.ListPending(ctx, limit)
}

func (s *ReviewService) GetDetection(ctx context.Context, id uuid.UUID) (*domain.Detection, error) {
	return s.detections.GetByID(ctx, id)
}

func (s *ReviewService) ListDetections(ctx context.Context, filter repository.DetectionFilter) ([]domain.Detection, int, error) {
	return s.detections.List(ctx, filter)
}
