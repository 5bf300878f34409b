package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthHandler answers liveness probes. It carries no dependency on
// the snapshot backend so the probe stays green while storage is down
// and the session keeps running in memory.
type HealthHandler struct {
	service string
	started time.Time
}

func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{service: service, started: time.Now().UTC()}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": h.service,
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
