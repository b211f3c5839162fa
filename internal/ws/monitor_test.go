package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentryvision/review-service/internal/domain"
)

func TestMonitor_SweepEvictsStaleConnections(t *testing.T) {
	registry := NewRegistry(testLogger(), nil)
	monitor := NewMonitor(registry, testLogger(), 10*time.Millisecond)
	user := testUser(domain.RoleReviewer)
	stale := &fakeConn{}
	fresh := &fakeConn{}
	staleClient := NewClient(stale)
	freshClient := NewClient(fresh)

	registry.Register(staleClient, user)
	registry.Register(freshClient, user)

	// Let both connections age past twice the interval, then revive one
	time.Sleep(25 * time.Millisecond)
	registry.TouchHeartbeat(freshClient)

	evicted := monitor.Sweep()

	assert.Equal(t, 1, evicted)
	assert.True(t, stale.isClosed())
	assert.False(t, fresh.isClosed())
	assert.Len(t, registry.ConnectionsForUser(user.ID), 1)

	summaries := registry.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].ConnectionCount)
}

func TestMonitor_SweepSendsCloseFrame(t *testing.T) {
	registry := NewRegistry(testLogger(), nil)
	monitor := NewMonitor(registry, testLogger(), 5*time.Millisecond)
	stale := &fakeConn{}

	registry.Register(NewClient(stale), testUser(domain.RoleOperator))
	time.Sleep(15 * time.Millisecond)

	monitor.Sweep()

	stale.mu.Lock()
	defer stale.mu.Unlock()
	require.Len(t, stale.controls, 1, "stale connection must get a close control frame")
}

func TestMonitor_SweepKeepsFreshConnections(t *testing.T) {
	registry := NewRegistry(testLogger(), nil)
	monitor := NewMonitor(registry, testLogger(), time.Minute)
	conn := &fakeConn{}

	registry.Register(NewClient(conn), testUser(domain.RoleReviewer))

	assert.Equal(t, 0, monitor.Sweep())
	assert.False(t, conn.isClosed())
	assert.Equal(t, 1, registry.Count())
}

func TestMonitor_SweepContinuesPastFailingConnection(t *testing.T) {
	registry := NewRegistry(testLogger(), nil)
	monitor := NewMonitor(registry, testLogger(), 5*time.Millisecond)
	broken := &fakeConn{failWrite: true}
	quiet := &fakeConn{}

	registry.Register(NewClient(broken), testUser(domain.RoleReviewer))
	registry.Register(NewClient(quiet), testUser(domain.RoleOperator))
	time.Sleep(15 * time.Millisecond)

	evicted := monitor.Sweep()

	assert.Equal(t, 2, evicted, "a failed close write must not abort the sweep")
	assert.Equal(t, 0, registry.Count())
}

func TestMonitor_RunStopsOnContextCancel(t *testing.T) {
	registry := NewRegistry(testLogger(), nil)
	monitor := NewMonitor(registry, testLogger(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(stopped)
	}()

	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on context cancel")
	}
}

func TestMonitor_RunStopsOnStop(t *testing.T) {
	registry := NewRegistry(testLogger(), nil)
	monitor := NewMonitor(registry, testLogger(), time.Minute)

	stopped := make(chan struct{})
	go func() {
		monitor.Run(context.Background())
		close(stopped)
	}()

	monitor.Stop()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on Stop")
	}
}

func TestMonitor_SweepRecoveryBacksOff(t *testing.T) {
	// nil registry makes the sweep panic; the monitor must survive and
	// reschedule with the backoff delay
	monitor := NewMonitor(nil, testLogger(), 10*time.Millisecond)

	next := monitor.sweepWithRecovery()

	assert.Equal(t, monitor.backoff, next)
}
