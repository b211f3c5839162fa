package ws

import (
	"time"
)

// Frame types exchanged over a connection
const (
	TypeConnectionEstablished = "connection_established"
	TypeHeartbeat             = "heartbeat"
	TypeHeartbeatAck          = "heartbeat_ack"
	TypeNewDetection          = "new_detection"
	TypeReviewCompleted       = "review_completed"
	TypeSystemAlert           = "system_alert"
	TypeNotification          = "notification"
)

// Close codes in the 4000+ custom range
const (
	CloseMissingCredential = 4001
	CloseInvalidCredential = 4002
	CloseHeartbeatTimeout  = 4008
)

// Envelope is the tagged, timestamped message unit exchanged over a
// connection. Immutable once constructed; serialized per delivery.
type Envelope struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

func NewEnvelope(eventType string, data map[string]interface{}) Envelope {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}
