package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/labstack/echo/v4"
)

const readinessTimeout = 3 * time.Second

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthHandler reports liveness and the reachability of storage backends.
type HealthHandler struct {
	deps map[string]dbx.Pinger
}

func NewHealthHandler(deps map[string]dbx.Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// Readiness handles GET /health/ready. Any failing dependency turns the
// response into 503.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.deps))}
	code := http.StatusOK
	for name, dep := range h.deps {
		if err := dep.PingContext(ctx); err != nil {
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	return c.JSON(code, resp)
}
