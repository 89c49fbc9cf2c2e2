package service

import (
	"errors"
	"strings"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/repository"
)

// notFound maps repository.ErrNotFound to the 404 envelope error and
// passes anything else through.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrNotFound
	}
	return err
}

// missingFields lists, in order, the names whose value is empty.
func missingFields(values map[string]string, order ...string) []string {
	var missing []string
	for _, name := range order {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// parseOptionalDate turns a request date into a *model.Date. Absent, null
// and empty values mean "no date".
func parseOptionalDate(o model.Optional[string]) (*model.Date, error) {
	if !o.Present() || strings.TrimSpace(o.Value) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(o.Value)
	if err != nil {
		return nil, apperror.ErrInvalidDate
	}
	return &d, nil
}

// ParseDateParam parses an optional query-string date.
func ParseDateParam(s string) (*model.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return nil, apperror.ErrInvalidDate
	}
	return &d, nil
}

func priorityOr(o model.Optional[string], fallback string) string {
	if p := strings.TrimSpace(o.Value); o.Present() && p != "" {
		return p
	}
	return fallback
}
