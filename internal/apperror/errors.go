// Package apperror defines the error values that handlers translate into
// the JSON error envelope. Each value carries the HTTP status, a numeric
// domain code and a short snake_case message that clients can switch on.
// Services return these values unchanged; anything else reaching the HTTP
// boundary is reported as an internal error.
package apperror

import (
	"fmt"
	"net/http"
	"strings"
)

// Error is a domain error with a stable numeric code.
type Error struct {
	Status  int    // HTTP status code
	Code    int    // domain code reported in the envelope
	Message string // machine readable message
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (code=%d)", e.Message, e.Code)
}

// Is reports whether target carries the same code and message. It lets
// errors.Is match values created by helpers such as MissingFields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New builds an Error.
func New(status, code int, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Validation errors.
var (
	ErrInvalidBody           = New(http.StatusBadRequest, 1001, "invalid_body")
	ErrInvalidDate           = New(http.StatusBadRequest, 1001, "invalid_date")
	ErrEmailExists           = New(http.StatusBadRequest, 2001, "email_exists")
	ErrPasswordTooLong       = New(http.StatusBadRequest, 1001, "password_too_long")
	ErrPhoneExists           = New(http.StatusBadRequest, 2005, "phone_exists")
	ErrMissingPlanTitle      = New(http.StatusBadRequest, 2101, "missing_title")
	ErrInvalidPlanStatus     = New(http.StatusBadRequest, 2102, "invalid_status")
	ErrMissingTaskTitle      = New(http.StatusBadRequest, 2201, "missing_title")
	ErrInvalidTaskStatus     = New(http.StatusBadRequest, 2202, "invalid_status")
	ErrMissingTopicName      = New(http.StatusBadRequest, 3001, "missing_name")
	ErrMissingTitleOrContent = New(http.StatusBadRequest, 3101, "missing_title_or_content")
	ErrMissingEntryID        = New(http.StatusBadRequest, 3201, "missing_entry_id")
)

// Authentication errors. Unknown account and wrong password share
// ErrInvalidCredentials so callers cannot tell which factor failed.
var (
	ErrMissingAuthorization = New(http.StatusUnauthorized, 1002, "missing_authorization")
	ErrInvalidToken         = New(http.StatusUnauthorized, 1002, "invalid_token")
	ErrWrongTokenKind       = New(http.StatusUnauthorized, 1002, "invalid_token_type")
	ErrTokenExpired         = New(http.StatusUnauthorized, 1004, "token_expired")
	ErrInvalidCredentials   = New(http.StatusUnauthorized, 2002, "invalid_credentials")
	ErrTokenRevoked         = New(http.StatusUnauthorized, 2003, "token_revoked")
	ErrFreshTokenRequired   = New(http.StatusUnauthorized, 2004, "fresh_token_required")
)

// Everything else.
var (
	ErrNotFound         = New(http.StatusNotFound, http.StatusNotFound, "not_found")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed")
	ErrBodyTooLarge     = New(http.StatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "body_too_large")
	ErrTooManyRequests  = New(http.StatusTooManyRequests, http.StatusTooManyRequests, "too_many_requests")
	ErrInternal         = New(http.StatusInternalServerError, http.StatusInternalServerError, "internal_error")
)

// MissingFields reports required request fields that were absent or blank.
func MissingFields(fields ...string) *Error {
	return New(http.StatusBadRequest, 1001, "missing_fields:"+strings.Join(fields, ","))
}
