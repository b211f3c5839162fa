package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Review status values
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Human verdict values
const (
	VerdictTruePositive  = "true_positive"
	VerdictFalsePositive = "false_positive"
	VerdictTrueNegative  = "true_negative"
	VerdictFalseNegative = "false_negative"
)

var validVerdicts = map[string]bool{
	VerdictTruePositive:  true,
	VerdictFalsePositive: true,
	VerdictTrueNegative:  true,
	VerdictFalseNegative: true,
}

// Review is a human judgement on a detection
type Review struct {
	ID              uuid.UUID `json:"id"`
	DetectionID     uuid.UUID `json:"detection_id"`
	ReviewerID      uuid.UUID `json:"reviewer_id"`
	Status          string    `json:"review_status"`
	HumanVerdict    *string   `json:"human_verdict,omitempty"`
	ConfidenceLevel *int      `json:"confidence_level,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	DurationSeconds *int      `json:"review_duration_seconds,omitempty"`
	ReviewedAt      time.Time `json:"reviewed_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsCompleted reports whether the review reached a terminal status
func (r *Review) IsCompleted() bool {
	return r.Status == ReviewApproved || r.Status == ReviewRejected
}

func (r *Review) Validate() error {
	switch r.Status {
	case ReviewPending, ReviewApproved, ReviewRejected:
	default:
		return errors.New("invalid review status")
	}

	if r.HumanVerdict != nil && !validVerdicts[*r.HumanVerdict] {
		return errors.New("invalid human verdict")
	}

	if r.ConfidenceLevel != nil && (*r.ConfidenceLevel < 1 || *r.ConfidenceLevel > 5) {
		return errors.New("confidence level must be between 1 and 5")
	}

	return nil
}

func IsValidVerdict(verdict string) bool {
	return validVerdicts[verdict]
}
