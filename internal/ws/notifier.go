package ws

import (
	"time"

	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/domain"
)

// Notifier translates business events into envelopes and picks a delivery
// scope. Stateless; callers never learn about delivery failures.
type Notifier struct {
	sender *Sender
}

func NewNotifier(sender *Sender) *Notifier {
	return &Notifier{sender: sender}
}

// NotifyNewDetection informs reviewers and admins about a fresh detection
func (n *Notifier) NotifyNewDetection(detectionID uuid.UUID, isAnomaly bool, confidence float64) {
	env := NewEnvelope(TypeNewDetection, map[string]interface{}{
		"detection_id": detectionID.String(),
		"is_anomaly":   isAnomaly,
		"confidence":   confidence,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})

	n.sender.ToRole(domain.RoleReviewer, env)
	n.sender.ToRole(domain.RoleAdmin, env)
}

// NotifyReviewCompleted broadcasts a review outcome to every connected
// user, operators included, so uploaders see the outcome of their uploads.
func (n *Notifier) NotifyReviewCompleted(reviewID, detectionID uuid.UUID, verdict string) {
	env := NewEnvelope(TypeReviewCompleted, map[string]interface{}{
		"review_id":    reviewID.String(),
		"detection_id": detectionID.String(),
		"verdict":      verdict,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})

	n.sender.Broadcast(env)
}

// NotifySystemAlert informs admins only
func (n *Notifier) NotifySystemAlert(alertType, message string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	env := NewEnvelope(TypeSystemAlert, map[string]interface{}{
		"alert_type": alertType,
		"message":    message,
		"data":       data,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})

	n.sender.ToRole(domain.RoleAdmin, env)
}

// NotifyUser pushes a generic notification to one user, or to everyone
// when userID is nil.
func (n *Notifier) NotifyUser(userID *uuid.UUID, message, severity string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}

	env := NewEnvelope(TypeNotification, map[string]interface{}{
		"message":  message,
		"severity": severity,
		"data":     data,
	})

	if userID != nil {
		n.sender.ToUser(*userID, env)
		return
	}
	n.sender.Broadcast(env)
}
