package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ebbingassist/backend/internal/service"
)

// StudyLogHandler serves the study-log journal.
type StudyLogHandler struct {
	Logs *service.StudyLogService
}

func NewStudyLogHandler(s *service.StudyLogService) *StudyLogHandler {
	return &StudyLogHandler{Logs: s}
}

// Create handles POST /api/study/logs.
func (h *StudyLogHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	var in service.StudyLogInput
	if err := bindBody(c, &in); err != nil {
		return err
	}
	l, err := h.Logs.Create(c.Request().Context(), uid, in)
	if err != nil {
		return err
	}
	return OK(c, l, "study_log_created")
}

// List handles GET /api/study/logs. Without start_date and end_date the
// last seven days are returned.
func (h *StudyLogHandler) List(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	from, err := service.ParseDateParam(c.QueryParam("start_date"))
	if err != nil {
		return err
	}
	to, err := service.ParseDateParam(c.QueryParam("end_date"))
	if err != nil {
		return err
	}
	list, err := h.Logs.List(c.Request().Context(), uid, from, to)
	if err != nil {
		return err
	}
	return OK(c, list, "")
}
