package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sentryvision/review-service/internal/domain"
)

type DetectionRepository struct {
	pool PgxPool
}

func NewDetectionRepository(pool PgxPool) *DetectionRepository {
	return &DetectionRepository{pool: pool}
}

func (r *DetectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Detection, error) {
	query := `
		SELECT id, image_id, model_version, confidence_score, is_anomaly,
		       anomaly_type, bounding_box, processing_time_ms, detected_at
		FROM detections
		WHERE id = $1
	`

	var detection domain.Detection
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&detection.ID,
		&detection.ImageID,
		&detection.ModelVersion,
		&detection.ConfidenceScore,
		&detection.IsAnomaly,
		&detection.AnomalyType,
		&detection.BoundingBox,
		&detection.ProcessingTimeMs,
		&detection.DetectedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDetectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get detection by id: %w", err)
	}

	return &detection, nil
}

func (r *DetectionRepository) List(ctx context.Context, filter DetectionFilter) ([]domain.Detection, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	arg := 1

	if filter.IsAnomaly != nil {
		where += fmt.Sprintf(" AND is_anomaly = $%d", arg)
		args = append(args, *filter.IsAnomaly)
		arg++
	}
	if filter.MinConfidence != nil {
		where += fmt.Sprintf(" AND confidence_score >= $%d", arg)
		args = append(args, *filter.MinConfidence)
		arg++
	}
	if filter.UnreviewedOnly {
		where += " AND NOT EXISTS (SELECT 1 FROM reviews rv WHERE rv.detection_id = detections.id)"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM detections " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count detections: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, image_id, model_version, confidence_score, is_anomaly,
		       anomaly_type, bounding_box, processing_time_ms, detected_at
		FROM detections
		%s
		ORDER BY detected_at DESC
		OFFSET $%d LIMIT $%d
	`, where, arg, arg+1)
	args = append(args, filter.Offset, filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list detections: %w", err)
	}
	defer rows.Close()

	var detections []domain.Detection
	for rows.Next() {
		var d domain.Detection
		err := rows.Scan(
			&d.ID,
			&d.ImageID,
			&d.ModelVersion,
			&d.ConfidenceScore,
			&d.IsAnomaly,
			&d.AnomalyType,
			&d.BoundingBox,
			&d.ProcessingTimeMs,
			&d.DetectedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan detection: %w", err)
		}
		detections = append(detections, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate detections: %w", err)
	}

	return detections, total, nil
}
