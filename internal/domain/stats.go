package domain

import (
	"github.com/google/uuid"
)

// ReviewStats aggregates the review backlog across all reviewers
type ReviewStats struct {
	Total              int     `json:"total"`
	Pending            int     `json:"pending"`
	Approved           int     `json:"approved"`
	Rejected           int     `json:"rejected"`
	AvgDurationSeconds float64 `json:"avg_duration_seconds"`
}

// ReviewerWorkload summarizes one reviewer's queue and throughput
type ReviewerWorkload struct {
	ReviewerID         uuid.UUID `json:"reviewer_id"`
	Total              int       `json:"total"`
	Pending            int       `json:"pending"`
	Completed          int       `json:"completed"`
	AvgDurationSeconds float64   `json:"avg_duration_seconds"`
}
