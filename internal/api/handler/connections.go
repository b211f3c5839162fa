package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sentryvision/review-service/internal/metrics"
	"github.com/sentryvision/review-service/internal/ws"
)

// ConnectionsHandler exposes the "who's online" diagnostic snapshot
type ConnectionsHandler struct {
	registry *ws.Registry
	gauge    *metrics.ConnectionGauge
}

func NewConnectionsHandler(registry *ws.Registry, gauge *metrics.ConnectionGauge) *ConnectionsHandler {
	return &ConnectionsHandler{
		registry: registry,
		gauge:    gauge,
	}
}

func (h *ConnectionsHandler) List(c *fiber.Ctx) error {
	summaries := h.registry.Summaries()

	return c.JSON(fiber.Map{
		"connected_users":  summaries,
		"total":            len(summaries),
		"connection_count": h.gauge.Value(),
	})
}
