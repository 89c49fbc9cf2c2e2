package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/middleware"
)

// pathID parses a numeric path parameter. Anything that is not a positive
// integer cannot name a row, so it is reported as not found.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.ErrNotFound
	}
	return id, nil
}

// bindBody decodes the request body into dst. An empty body leaves dst
// untouched.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return apperror.ErrInvalidBody
	}
	return nil
}

// userID returns the authenticated caller. Protected routes run behind
// JWTAuth, so a zero id means the route was wired without it.
func userID(c echo.Context) (uint64, error) {
	rc := middleware.FromContext(c)
	if !rc.Authenticated() {
		return 0, apperror.ErrMissingAuthorization
	}
	return rc.UserID, nil
}

// queryInt parses an integer query parameter, falling back to def when it
// is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	if n, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return n
	}
	return def
}
