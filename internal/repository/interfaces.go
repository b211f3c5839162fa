package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sentryvision/review-service/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DetectionRepositoryInterface defines read access to detections
type DetectionRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Detection, error)
	List(ctx context.Context, filter DetectionFilter) ([]domain.Detection, int, error)
}

// ReviewRepositoryInterface defines operations for review data access
type ReviewRepositoryInterface interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error)
	ListPending(ctx context.Context, limit int) ([]domain.Review, error)
	ExistsForDetection(ctx context.Context, detectionID uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*domain.ReviewStats, error)
	Workload(ctx context.Context, reviewerID uuid.UUID) (*domain.ReviewerWorkload, error)
}

// DetectionFilter narrows detection listings
type DetectionFilter struct {
	IsAnomaly      *bool
	MinConfidence  *float64
	UnreviewedOnly bool
	Offset         int
	Limit          int
}

// ReviewFilter narrows review listings
type ReviewFilter struct {
	Status     *string
	ReviewerID *uuid.UUID
	Offset     int
	Limit      int
}
