package service

import (
	"context"
	"log/slog"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/queue"
	"github.com/ebbingassist/backend/internal/repository"
)

// DefaultLogWindowDays is the length of the study-log window listed when
// the caller gives no date range, today included.
const DefaultLogWindowDays = 7

// StudyLogInput carries study-log fields from a request body.
type StudyLogInput struct {
	EntryID  model.Optional[uint64] `json:"entry_id"`
	Note     model.Optional[string] `json:"note"`
	LoggedAt model.Optional[string] `json:"logged_at"`
}

// LogList is a study-log listing with the effective date window. A nil
// bound means the window is open on that side.
type LogList struct {
	Items     []*model.StudyLog `json:"items"`
	Total     int               `json:"total"`
	StartDate *model.Date       `json:"start_date"`
	EndDate   *model.Date       `json:"end_date"`
}

// StudyLogService records and lists study logs.
type StudyLogService struct {
	Logs    *repository.StudyLogRepo
	Entries *repository.EntryRepo
	Events  queue.Publisher
	Logger  *slog.Logger
	// Today is the clock used for defaults.
	Today func() model.Date
}

func NewStudyLogService(logs *repository.StudyLogRepo, entries *repository.EntryRepo, events queue.Publisher, logger *slog.Logger) *StudyLogService {
	return &StudyLogService{Logs: logs, Entries: entries, Events: events, Logger: logger, Today: model.Today}
}

// Create records a log against one of the caller's entries. logged_at
// defaults to today.
func (s *StudyLogService) Create(ctx context.Context, userID uint64, in StudyLogInput) (*model.StudyLog, error) {
	if !in.EntryID.Present() || in.EntryID.Value == 0 {
		return nil, apperror.ErrMissingEntryID
	}
	if _, err := s.Entries.GetByIDAndOwner(ctx, in.EntryID.Value, userID); err != nil {
		return nil, notFound(err)
	}
	loggedAt, err := parseOptionalDate(in.LoggedAt)
	if err != nil {
		return nil, err
	}
	if loggedAt == nil {
		loggedAt = s.Today().Ptr()
	}
	l := &model.StudyLog{
		UserID:   userID,
		EntryID:  in.EntryID.Value,
		Note:     in.Note.Ptr(),
		LoggedAt: *loggedAt,
	}
	if err := s.Logs.Create(ctx, l); err != nil {
		return nil, err
	}

	ev := queue.NewEvent(queue.EventStudyLogCreated, userID)
	ev.EntryID, ev.LogID = l.EntryID, l.ID
	queue.PublishAsync(s.Events, s.Logger, ev)
	return l, nil
}

// List returns the caller's logs within [from, to]. With neither bound
// given, the window is the last DefaultLogWindowDays days ending today.
func (s *StudyLogService) List(ctx context.Context, userID uint64, from, to *model.Date) (*LogList, error) {
	if from == nil && to == nil {
		today := s.Today()
		to = today.Ptr()
		from = today.AddDays(-(DefaultLogWindowDays - 1)).Ptr()
	}
	items, err := s.Logs.ListByOwner(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &LogList{Items: items, Total: len(items), StartDate: from, EndDate: to}, nil
}
