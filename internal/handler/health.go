package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Health is the liveness probe. It never touches dependencies.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// HealthHandler serves the readiness probe.
type HealthHandler struct {
	// DB must answer for the service to be ready.
	DB Checker
	// Optional dependencies are reported but never fail readiness.
	Optional map[string]Checker
}

// Ready pings every dependency with a short timeout and answers 503 when
// the database is unreachable.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status, code := "ready", http.StatusOK
	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			checks["database"] = "down"
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["database"] = "up"
		}
	}
	for name, chk := range h.Optional {
		if chk == nil {
			checks[name] = "disabled"
			continue
		}
		if err := chk.Ping(ctx); err != nil {
			checks[name] = "down"
		} else {
			checks[name] = "up"
		}
	}
	return c.JSON(code, echo.Map{"status": status, "checks": checks})
}
