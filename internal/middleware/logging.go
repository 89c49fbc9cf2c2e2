package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// Logger returns a middleware that writes one structured line per request.
// Errors returned by the handler chain are rendered here through
// c.Error so the logged status is the one the client receives.
// Authorization headers and tokens are never logged.
func Logger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := FromContext(c)
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			duration := time.Since(start)
			status := c.Response().Status
			req := c.Request()

			attrs := []slog.Attr{
				slog.String("request_id", rc.RequestID),
				slog.Uint64("user_id", rc.UserID),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
				slog.String("remote_ip", c.RealIP()),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}

			// Log at appropriate level based on status code
			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}
			logger.LogAttrs(req.Context(), level, "http request", attrs...)
			return nil
		}
	}
}
