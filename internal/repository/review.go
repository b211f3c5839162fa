package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sentryvision/review-service/internal/domain"
)

const reviewColumns = `id, detection_id, reviewer_id, review_status, human_verdict,
	confidence_level, notes, review_duration_seconds, reviewed_at, updated_at`

type ReviewRepository struct {
	pool PgxPool
}

func NewReviewRepository(pool PgxPool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, detection_id, reviewer_id, review_status, human_verdict,
		                     confidence_level, notes, review_duration_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING reviewed_at, updated_at
	`

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		review.ID,
		review.DetectionID,
		review.ReviewerID,
		review.Status,
		review.HumanVerdict,
		review.ConfidenceLevel,
		review.Notes,
		review.DurationSeconds,
	).Scan(&review.ReviewedAt, &review.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	return review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET review_status = $1,
		    human_verdict = $2,
		    confidence_level = $3,
		    notes = $4,
		    review_duration_seconds = $5,
		    updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		review.Status,
		review.HumanVerdict,
		review.ConfidenceLevel,
		review.Notes,
		review.DurationSeconds,
		review.ID,
	).Scan(&review.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrReviewNotFound
	}
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) ExistsForDetection(ctx context.Context, detectionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE detection_id = $1)`, detectionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}
	return exists, nil
}

func (r *ReviewRepository) Stats(ctx context.Context) (*domain.ReviewStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE review_status = 'pending'),
		       COUNT(*) FILTER (WHERE review_status = 'approved'),
		       COUNT(*) FILTER (WHERE review_status = 'rejected'),
		       COALESCE(AVG(review_duration_seconds), 0)
		FROM reviews
	`

	var stats domain.ReviewStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Approved,
		&stats.Rejected,
		&stats.AvgDurationSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}

	return &stats, nil
}

func (r *ReviewRepository) Workload(ctx context.Context, reviewerID uuid.UUID) (*domain.ReviewerWorkload, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE review_status = 'pending'),
		       COUNT(*) FILTER (WHERE review_status IN ('approved', 'rejected')),
		       COALESCE(AVG(review_duration_seconds)
		           FILTER (WHERE review_status IN ('approved', 'rejected')), 0)
		FROM reviews
		WHERE reviewer_id = $1
	`

	workload := domain.ReviewerWorkload{ReviewerID: reviewerID}
	err := r.pool.QueryRow(ctx, query, reviewerID).Scan(
		&workload.Total,
		&workload.Pending,
		&workload.Completed,
		&workload.AvgDurationSeconds,
	)
	if err != nil {
		return nil, fmt.Errorf("reviewer workload: %w", err)
	}

	return &workload, nil
}

func (r *ReviewRepository) List(ctx context.Context, filter ReviewFilter) ([]domain.Review, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	arg := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND review_status = $%d", arg)
		args = append(args, *filter.Status)
		arg++
	}
	if filter.ReviewerID != nil {
		where += fmt.Sprintf(" AND reviewer_id = $%d", arg)
		args = append(args, *filter.ReviewerID)
		arg++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM reviews " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM reviews %s ORDER BY reviewed_at DESC OFFSET $%d LIMIT $%d`,
		reviewColumns, where, arg, arg+1)
	args = append(args, filter.Offset, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews, err := collectReviews(rows)
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *ReviewRepository) ListPending(ctx context.Context, limit int) ([]domain.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE review_status = $1
		ORDER BY reviewed_at ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain.ReviewPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending reviews: %w", err)
	}
	defer rows.Close()

	return collectReviews(rows)
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.ID,
		&review.DetectionID,
		&review.ReviewerID,
		&review.Status,
		&review.HumanVerdict,
		&review.ConfidenceLevel,
		&review.Notes,
		&review.DurationSeconds,
		&review.ReviewedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func collectReviews(rows pgx.Rows) ([]domain.Review, error) {
	var reviews []domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}
