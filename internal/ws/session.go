package ws

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sentryvision/review-service/internal/domain"
)

// ReadWriteConn is the full transport surface a session drives
type ReadWriteConn interface {
	Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// Session orchestrates one authenticated connection from registration
// through the receive loop to guaranteed teardown.
type Session struct {
	registry *Registry
	sender   *Sender
	logger   *slog.Logger
	user     domain.User
}

func NewSession(registry *Registry, sender *Sender, logger *slog.Logger, user domain.User) *Session {
	return &Session{
		registry: registry,
		sender:   sender,
		logger: logger.With(
			slog.String("user_id", user.ID.String()),
			slog.String("username", user.Username),
		),
		user: user,
	}
}

// Run registers the connection, starts its write pump, sends the welcome
// envelope and processes inbound frames until disconnect. Unregister
// runs on every exit path and releases the pump.
func (s *Session) Run(conn ReadWriteConn) {
	cl := NewClient(conn)
	s.registry.Register(cl, s.user)
	defer s.registry.Unregister(cl)

	go s.sender.Run(cl)

	s.sender.ToConnection(cl, NewEnvelope(TypeConnectionEstablished, map[string]interface{}{
		"user_id":      s.user.ID.String(),
		"username":     s.user.Username,
		"connected_at": time.Now().UTC().Format(time.RFC3339),
	}))

	s.readLoop(conn, cl)
}

func (s *Session) readLoop(conn ReadWriteConn, cl *Client) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("websocket session panicked", slog.Any("panic", r))
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("websocket read ended", slog.Any("error", err))
			return
		}

		var frame Envelope
		if err := json.Unmarshal(payload, &frame); err != nil {
			s.logger.Warn("malformed websocket frame, closing", slog.Any("error", err))
			return
		}

		switch frame.Type {
		case TypeHeartbeat:
			s.registry.TouchHeartbeat(cl)
			s.sender.ToConnection(cl, NewEnvelope(TypeHeartbeatAck, map[string]interface{}{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			}))
		default:
			// Forward-compatible: unknown types are accepted and ignored
			s.logger.Debug("ignoring websocket frame", slog.String("type", frame.Type))
		}
	}
}
