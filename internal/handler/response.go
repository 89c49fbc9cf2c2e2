package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/apperror"
)

// envelope is the shape of every API response. Data is null on errors.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// OK writes a 200 success envelope. A nil data is rendered as {}.
func OK(c echo.Context, data any, message string) error {
	if data == nil {
		data = echo.Map{}
	}
	if message == "" {
		message = "ok"
	}
	return c.JSON(http.StatusOK, envelope{Code: 0, Message: message, Data: data})
}

// ErrorHandler renders every error that escapes a handler or middleware.
// Domain errors keep their status and code; echo's own errors are mapped;
// anything else becomes a generic 500 whose detail only reaches the log.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	appErr := AsAppError(err)
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(appErr.Status)
		return
	}
	_ = c.JSON(appErr.Status, envelope{Code: appErr.Code, Message: appErr.Message})
}

// AsAppError maps err onto the error taxonomy.
func AsAppError(err error) *apperror.Error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusBadRequest, http.StatusUnsupportedMediaType:
			return apperror.ErrInvalidBody
		case http.StatusUnauthorized:
			return apperror.ErrMissingAuthorization
		case http.StatusNotFound:
			return apperror.ErrNotFound
		case http.StatusMethodNotAllowed:
			return apperror.ErrMethodNotAllowed
		case http.StatusRequestEntityTooLarge:
			return apperror.ErrBodyTooLarge
		case http.StatusTooManyRequests:
			return apperror.ErrTooManyRequests
		}
	}
	return apperror.ErrInternal
}
