package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/model"
)

// HeaderRequestID carries the correlation id on requests and responses.
const HeaderRequestID = "X-Request-ID"

const requestContextKey = "request_context"

// RequestContext is built once per request at the boundary and handed to
// handlers explicitly. Identity fields stay zero until JWTAuth (or a
// handler that authenticates on its own) fills them.
type RequestContext struct {
	RequestID string
	Start     time.Time

	UserID  uint64
	TokenID string
	Kind    model.TokenKind
	Fresh   bool
}

// Authenticated reports whether an identity has been attached.
func (rc *RequestContext) Authenticated() bool { return rc != nil && rc.UserID != 0 }

// RequestContextMiddleware attaches a RequestContext to every request. An
// incoming X-Request-ID is reused when it is a valid UUID; otherwise a new
// one is generated. The id is echoed on the response.
func RequestContextMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)
			c.Set(requestContextKey, &RequestContext{RequestID: id, Start: time.Now()})
			return next(c)
		}
	}
}

// FromContext returns the request's RequestContext. Routes mounted without
// RequestContextMiddleware (tests calling a handler directly) get a fresh,
// empty value so callers never deal with nil.
func FromContext(c echo.Context) *RequestContext {
	if rc, ok := c.Get(requestContextKey).(*RequestContext); ok && rc != nil {
		return rc
	}
	rc := &RequestContext{Start: time.Now()}
	c.Set(requestContextKey, rc)
	return rc
}
