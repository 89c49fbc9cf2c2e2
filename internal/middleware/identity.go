package middleware

// identity.go holds the helpers shared by the authentication and rate
// limiting middleware: reading the bearer token and rendering the caller's
// identity as a key component.

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/utils"
)

// BearerToken extracts the raw token from an "Authorization: Bearer ..."
// header. It returns "" when the header is missing or uses another scheme.
func BearerToken(c echo.Context) string {
	auth := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	const prefix = "bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// SetIdentity copies the verified claims into the request context.
func SetIdentity(c echo.Context, claims *utils.Claims) {
	rc := FromContext(c)
	rc.UserID, _ = claims.UserID()
	rc.TokenID = claims.ID
	rc.Kind = claims.Type
	rc.Fresh = claims.Fresh
}

// userKey renders the caller for rate-limit keys; "anon" when nobody is
// authenticated.
func userKey(c echo.Context) string {
	if rc := FromContext(c); rc.Authenticated() {
		return strconv.FormatUint(rc.UserID, 10)
	}
	return "anon"
}
