package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/utils"
)

// Authenticator verifies a raw token against the signing key and the
// revocation ledger.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string, kinds ...model.TokenKind) (*utils.Claims, error)
}

// JWTAuth returns an Echo middleware that accepts only non-revoked bearer
// tokens of the given kinds and attaches the caller's identity to the
// RequestContext. The ledger is consulted on every request, so a logout is
// visible to the very next call.
func JWTAuth(auth Authenticator, kinds ...model.TokenKind) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := auth.Authenticate(c.Request().Context(), BearerToken(c), kinds...)
			if err != nil {
				return err
			}
			SetIdentity(c, claims)
			return next(c)
		}
	}
}
