package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryvision/review-service/internal/domain"
)

func newReviewRepoMock(t *testing.T) (*ReviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewReviewRepository(mock), mock
}

func TestReviewRepository_Create(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	review := &domain.Review{
		DetectionID: uuid.New(),
		ReviewerID:  uuid.New(),
		Status:      domain.ReviewPending,
	}
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO reviews`).
		WithArgs(pgxmock.AnyArg(), review.DetectionID, review.ReviewerID, review.Status,
			review.HumanVerdict, review.ConfidenceLevel, review.Notes, review.DurationSeconds).
		WillReturnRows(pgxmock.NewRows([]string{"reviewed_at", "updated_at"}).AddRow(now, now))

	err := repo.Create(context.Background(), review)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, review.ID, "id is assigned when absent")
	assert.Equal(t, now, review.ReviewedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetByID(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	id := uuid.New()
	detectionID := uuid.New()
	reviewerID := uuid.New()
	verdict := domain.VerdictTruePositive
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "detection_id", "reviewer_id", "review_status", "human_verdict",
		"confidence_level", "notes", "review_duration_seconds", "reviewed_at", "updated_at",
	}).AddRow(id, detectionID, reviewerID, domain.ReviewApproved, &verdict,
		(*int)(nil), (*string)(nil), (*int)(nil), now, now)

	mock.ExpectQuery(`FROM reviews WHERE id`).
		WithArgs(id).
		WillReturnRows(rows)

	review, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, review.ID)
	assert.Equal(t, domain.ReviewApproved, review.Status)
	require.NotNil(t, review.HumanVerdict)
	assert.Equal(t, domain.VerdictTruePositive, *review.HumanVerdict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_GetByIDNotFound(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	id := uuid.New()
	mock.ExpectQuery(`FROM reviews WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Update(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	review := &domain.Review{
		ID:         uuid.New(),
		Status:     domain.ReviewApproved,
		ReviewerID: uuid.New(),
	}
	now := time.Now()

	mock.ExpectQuery(`UPDATE reviews`).
		WithArgs(review.Status, review.HumanVerdict, review.ConfidenceLevel,
			review.Notes, review.DurationSeconds, review.ID).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	err := repo.Update(context.Background(), review)
	require.NoError(t, err)
	assert.Equal(t, now, review.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_UpdateNotFound(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	review := &domain.Review{ID: uuid.New(), Status: domain.ReviewRejected}

	mock.ExpectQuery(`UPDATE reviews`).
		WithArgs(review.Status, review.HumanVerdict, review.ConfidenceLevel,
			review.Notes, review.DurationSeconds, review.ID).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), review)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Delete(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM reviews WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_DeleteNotFound(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM reviews WHERE id`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ExistsForDetection(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	detectionID := uuid.New()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(detectionID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForDetection(context.Background(), detectionID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Stats(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	mock.ExpectQuery(`FROM reviews`).
		WillReturnRows(pgxmock.NewRows([]string{
			"count", "pending", "approved", "rejected", "avg",
		}).AddRow(10, 4, 5, 1, 42.5))

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 4, stats.Pending)
	assert.Equal(t, 5, stats.Approved)
	assert.Equal(t, 1, stats.Rejected)
	assert.InDelta(t, 42.5, stats.AvgDurationSeconds, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Workload(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	reviewerID := uuid.New()
	mock.ExpectQuery(`WHERE reviewer_id`).
		WithArgs(reviewerID).
		WillReturnRows(pgxmock.NewRows([]string{
			"count", "pending", "completed", "avg",
		}).AddRow(7, 3, 4, 30.0))

	workload, err := repo.Workload(context.Background(), reviewerID)
	require.NoError(t, err)

	assert.Equal(t, reviewerID, workload.ReviewerID)
	assert.Equal(t, 7, workload.Total)
	assert.Equal(t, 3, workload.Pending)
	assert.Equal(t, 4, workload.Completed)
	assert.InDelta(t, 30.0, workload.AvgDurationSeconds, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListWithStatusFilter(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	status := domain.ReviewPending
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reviews`).
		WithArgs(status).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	rows := pgxmock.NewRows([]string{
		"id", "detection_id", "reviewer_id", "review_status", "human_verdict",
		"confidence_level", "notes", "review_duration_seconds", "reviewed_at", "updated_at",
	}).AddRow(uuid.New(), uuid.New(), uuid.New(), domain.ReviewPending, (*string)(nil),
		(*int)(nil), (*string)(nil), (*int)(nil), now, now)

	mock.ExpectQuery(`ORDER BY reviewed_at DESC`).
		WithArgs(status, 0, 20).
		WillReturnRows(rows)

	reviews, total, err := repo.List(context.Background(), ReviewFilter{
		Status: &status,
		Limit:  20,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, reviews, 1)
	assert.Equal(t, domain.ReviewPending, reviews[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ListPending(t *testing.T) {
	repo, mock := newReviewRepoMock(t)

	now := time.Now()
	rows := pgxmock.NewRows([]string{
		"id", "detection_id", "reviewer_id", "review_status", "human_verdict",
		"confidence_level", "notes", "review_duration_seconds", "reviewed_at", "updated_at",
	}).
		AddRow(uuid.New(), uuid.New(), uuid.New(), domain.ReviewPending, (*string)(nil),
			(*int)(nil), (*string)(nil), (*int)(nil), now, now).
		AddRow(uuid.New(), uuid.New(), uuid.New(), domain.ReviewPending, (*string)(nil),
			(*int)(nil), (*string)(nil), (*int)(nil), now, now)

	mock.ExpectQuery(`FROM reviews\s+WHERE review_status`).
		WithArgs(domain.ReviewPending, 10).
		WillReturnRows(rows)

	reviews, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
