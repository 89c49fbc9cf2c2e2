package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
)

// RequireFresh rejects requests whose access token was minted by refresh
// rather than by a password check. It must run after JWTAuth.
func RequireFresh() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc := FromContext(c)
			if !rc.Authenticated() {
				return apperror.ErrMissingAuthorization
			}
			if rc.Kind != model.TokenAccess || !rc.Fresh {
				return apperror.ErrFreshTokenRequired
			}
			return next(c)
		}
	}
}
