package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentryvision/review-service/internal/domain"
)

// Conn is the transport surface a client writes to. *websocket.Conn
// satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// ConnectionSink receives the current connection count on every
// connect/disconnect transition.
type ConnectionSink interface {
	Set(count int)
}

type connState struct {
	user          domain.User
	connectedAt   time.Time
	lastHeartbeat time.Time
}

// UserSummary aggregates one connected user's connections for diagnostics
type UserSummary struct {
	UserID          uuid.UUID   `json:"user_id"`
	Username        string      `json:"username"`
	Role            domain.Role `json:"role"`
	ConnectionCount int         `json:"connection_count"`
	ConnectedAt     time.Time   `json:"connected_at"`
	LastHeartbeat   time.Time   `json:"last_heartbeat"`
}

// HeartbeatState is a point-in-time view of one connection's liveness
type HeartbeatState struct {
	Client        *Client
	LastHeartbeat time.Time
}

// Registry is the authoritative in-memory store of active connections.
// It keeps the user→clients and client→user mappings consistent under a
// single mutex; all snapshot methods return copies.
type Registry struct {
	mu     sync.Mutex
	users  map[uuid.UUID]map[*Client]struct{}
	conns  map[*Client]*connState
	sink   ConnectionSink
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger, sink ConnectionSink) *Registry {
	return &Registry{
		users:  make(map[uuid.UUID]map[*Client]struct{}),
		conns:  make(map[*Client]*connState),
		sink:   sink,
		logger: logger,
	}
}

// Register adds a client to its owner's set. Registering the same client
// twice is a no-op.
func (r *Registry) Register(cl *Client, user domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[cl]; ok {
		return
	}

	now := time.Now()
	r.conns[cl] = &connState{
		user:          user,
		connectedAt:   now,
		lastHeartbeat: now,
	}

	if r.users[user.ID] == nil {
		r.users[user.ID] = make(map[*Client]struct{})
	}
	r.users[user.ID][cl] = struct{}{}

	r.reportLocked()

	r.logger.Info("websocket connected",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username),
	)
}

// Unregister removes a client, closes its outbound queue and, if it was
// the user's last connection, drops the user entry. Safe to call on an
// already-removed client.
func (r *Registry) Unregister(cl *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.conns[cl]
	if !ok {
		return
	}
	delete(r.conns, cl)

	if set, ok := r.users[state.user.ID]; ok {
		delete(set, cl)
		if len(set) == 0 {
			delete(r.users, state.user.ID)
		}
	}

	cl.CloseQueue()

	r.reportLocked()

	r.logger.Info("websocket disconnected",
		slog.String("user_id", state.user.ID.String()),
		slog.String("username", state.user.Username),
	)
}

// TouchHeartbeat records a heartbeat for the client; no-op if unknown
func (r *Registry) TouchHeartbeat(cl *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.conns[cl]; ok {
		state.lastHeartbeat = time.Now()
	}
}

// ConnectionsForUser returns a snapshot of the user's live clients
func (r *Registry) ConnectionsForUser(userID uuid.UUID) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.users[userID]
	clients := make([]*Client, 0, len(set))
	for cl := range set {
		clients = append(clients, cl)
	}
	return clients
}

// UserIDs returns a snapshot of currently-connected user ids
func (r *Registry) UserIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids
}

// UserIDsByRole returns a snapshot of connected user ids holding the role
func (r *Registry) UserIDsByRole(role domain.Role) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []uuid.UUID
	for id, set := range r.users {
		for cl := range set {
			if state, ok := r.conns[cl]; ok && state.user.Role == role {
				ids = append(ids, id)
			}
			break
		}
	}
	return ids
}

// Owner returns the user that owns the client
func (r *Registry) Owner(cl *Client) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.conns[cl]; ok {
		return state.user, true
	}
	return domain.User{}, false
}

// Heartbeats returns a snapshot of every connection's last heartbeat
func (r *Registry) Heartbeats() []HeartbeatState {
	r.mu.Lock()
	defer r.mu.Unlock()

	states := make([]HeartbeatState, 0, len(r.conns))
	for cl, state := range r.conns {
		states = append(states, HeartbeatState{
			Client:        cl,
			LastHeartbeat: state.lastHeartbeat,
		})
	}
	return states
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Summaries returns one entry per connected user, aggregating its
// connections' metadata (earliest connect time, latest heartbeat).
func (r *Registry) Summaries() []UserSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	summaries := make([]UserSummary, 0, len(r.users))
	for _, set := range r.users {
		var summary UserSummary
		first := true
		for cl := range set {
			state, ok := r.conns[cl]
			if !ok {
				continue
			}
			if first {
				summary = UserSummary{
					UserID:        state.user.ID,
					Username:      state.user.Username,
					Role:          state.user.Role,
					ConnectedAt:   state.connectedAt,
					LastHeartbeat: state.lastHeartbeat,
				}
				first = false
			} else {
				if state.connectedAt.Before(summary.ConnectedAt) {
					summary.ConnectedAt = state.connectedAt
				}
				if state.lastHeartbeat.After(summary.LastHeartbeat) {
					summary.LastHeartbeat = state.lastHeartbeat
				}
			}
			summary.ConnectionCount++
		}
		if summary.ConnectionCount > 0 {
			summaries = append(summaries, summary)
		}
	}
	return summaries
}

func (r *Registry) reportLocked() {
	if r.sink != nil {
		r.sink.Set(len(r.conns))
	}
}
