package metrics

import (
	"sync/atomic"
)

// ConnectionGauge tracks the current number of live websocket
// connections. Updated by the registry on every connect/disconnect
// transition; read by the diagnostics endpoint and any external scraper.
type ConnectionGauge struct {
	n atomic.Int64
}

func NewConnectionGauge() *ConnectionGauge {
	return &ConnectionGauge{}
}

// Set records the current connection count
func (g *ConnectionGauge) Set(count int) {
	g.n.Store(int64(count))
}

// Value returns the last recorded connection count
func (g *ConnectionGauge) Value() int {
	return int(g.n.Load())
}
