package ws

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sentryvision/review-service/internal/domain"
)

// fakeConn records writes and can be told to fail them
type fakeConn struct {
	mu            sync.Mutex
	frames        [][]byte
	controls      [][]byte
	writeAttempts int
	failWrite     bool
	closed        bool
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writeAttempts++
	if f.failWrite {
		return errors.New("write: broken pipe")
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	f.frames = append(f.frames, cp)
	return nil
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWrite {
		return errors.New("write control: broken pipe")
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	f.controls = append(f.controls, cp)
	return nil
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAttempts
}

func (f *fakeConn) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeConn) envelopes(t *testing.T) []Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Envelope, 0, len(f.frames))
	for _, frame := range f.frames {
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		out = append(out, env)
	}
	return out
}

func (f *fakeConn) receivedTypes(t *testing.T) []string {
	t.Helper()

	var types []string
	for _, env := range f.envelopes(t) {
		types = append(types, env.Type)
	}
	return types
}

// scriptedConn feeds a fixed sequence of inbound frames, then reports a
// disconnect
type scriptedConn struct {
	fakeConn
	inbound [][]byte
	pos     int
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if c.pos >= len(c.inbound) {
		return 0, nil, errors.New("connection closed")
	}
	frame := c.inbound[c.pos]
	c.pos++
	return 1, frame, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testUser(role domain.Role) domain.User {
	return domain.User{
		ID:       uuid.New(),
		Username: "user-" + uuid.NewString()[:8],
		Role:     role,
		IsActive: true,
	}
}

// startClient registers a client for the connection and runs its write
// pump, mirroring what a session does.
func startClient(t *testing.T, registry *Registry, sender *Sender, user domain.User, conn Conn) *Client {
	t.Helper()
	cl := NewClient(conn)
	registry.Register(cl, user)
	go sender.Run(cl)
	return cl
}

// waitFrames blocks until the pump has delivered at least n data frames
func waitFrames(t *testing.T, conn *fakeConn, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return conn.frameCount() >= n
	}, time.Second, 2*time.Millisecond)
}
