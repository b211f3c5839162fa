package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/domain"
)

// Sender pushes envelopes onto per-connection queues. Delivery is
// best-effort: a full queue or failed write evicts that one connection
// and is never surfaced to the caller, so one broken peer cannot stall
// or corrupt delivery to the rest.
type Sender struct {
	registry     *Registry
	logger       *slog.Logger
	writeTimeout time.Duration
}

func NewSender(registry *Registry, logger *slog.Logger, writeTimeout time.Duration) *Sender {
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	return &Sender{
		registry:     registry,
		logger:       logger,
		writeTimeout: writeTimeout,
	}
}

// Run drains the client's outbound queue, serializing every data frame
// write onto this one goroutine. Returns when the queue closes or a
// write fails; the failing write evicts the connection.
func (s *Sender) Run(cl *Client) {
	cl.WritePump(s.writeTimeout, func(err error) {
		s.evict(cl, "write", err)
	})
}

// ToConnection serializes the envelope and queues it on one connection.
// Any failure evicts that connection only.
func (s *Sender) ToConnection(cl *Client, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		s.evict(cl, env.Type, err)
		return
	}

	if !cl.Enqueue(payload) {
		s.evict(cl, env.Type, errors.New("send queue full"))
	}
}

// ToUser delivers to all of the user's connections independently; a
// failure on one connection does not skip the others. No-op when the
// user has no live connections.
func (s *Sender) ToUser(userID uuid.UUID, env Envelope) {
	for _, cl := range s.registry.ConnectionsForUser(userID) {
		s.ToConnection(cl, env)
	}
}

// ToRole delivers to every connected user holding the role
func (s *Sender) ToRole(role domain.Role, env Envelope) {
	for _, userID := range s.registry.UserIDsByRole(role) {
		s.ToUser(userID, env)
	}
}

// Broadcast delivers to every user connected at the moment of the call.
// Users connecting mid-broadcast are not included.
func (s *Sender) Broadcast(env Envelope) {
	for _, userID := range s.registry.UserIDs() {
		s.ToUser(userID, env)
	}
}

func (s *Sender) evict(cl *Client, reason string, err error) {
	s.logger.Warn("websocket send failed, evicting connection",
		slog.String("reason", reason),
		slog.Any("error", err),
	)
	s.registry.Unregister(cl)
	_ = cl.Close()
}
