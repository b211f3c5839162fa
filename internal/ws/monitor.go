package ws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Monitor periodically sweeps the registry and evicts connections that
// stopped heartbeating. A connection is stale once its last heartbeat is
// older than twice the heartbeat interval.
type Monitor struct {
	registry *Registry
	logger   *slog.Logger
	interval time.Duration
	backoff  time.Duration
	done     chan struct{}
}

func NewMonitor(registry *Registry, logger *slog.Logger, interval time.Duration) *Monitor {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		registry: registry,
		logger:   logger,
		interval: interval,
		backoff:  time.Minute,
		done:     make(chan struct{}),
	}
}

// Run sweeps on every heartbeat interval until the context is cancelled
// or Stop is called. A sweep that panics is logged and rescheduled after
// the fallback backoff instead of killing the monitor.
func (m *Monitor) Run(ctx context.Context) {
	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	m.logger.Info("liveness monitor started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("liveness monitor stopped")
			return
		case <-m.done:
			m.logger.Info("liveness monitor stopped")
			return
		case <-timer.C:
			timer.Reset(m.sweepWithRecovery())
		}
	}
}

// Stop terminates the monitor loop
func (m *Monitor) Stop() {
	close(m.done)
}

func (m *Monitor) sweepWithRecovery() (next time.Duration) {
	next = m.interval
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("liveness sweep panicked", slog.Any("panic", r))
			next = m.backoff
		}
	}()
	m.Sweep()
	return next
}

// Sweep evicts every stale connection. A failure to close one connection
// does not abort the sweep for the rest.
func (m *Monitor) Sweep() int {
	cutoff := 2 * m.interval
	now := time.Now()
	evicted := 0

	for _, hb := range m.registry.Heartbeats() {
		if now.Sub(hb.LastHeartbeat) < cutoff {
			continue
		}

		m.logger.Warn("evicting stale websocket connection",
			slog.Duration("since_heartbeat", now.Sub(hb.LastHeartbeat)),
		)

		closeMsg := websocket.FormatCloseMessage(CloseHeartbeatTimeout, "heartbeat timeout")
		_ = hb.Client.WriteControl(websocket.CloseMessage, closeMsg, now.Add(time.Second))

		m.registry.Unregister(hb.Client)
		_ = hb.Client.Close()
		evicted++
	}

	return evicted
}
