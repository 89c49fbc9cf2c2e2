package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/database"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/repository"
)

// Page size bounds for entry listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// TopicInput carries topic fields from a request body.
type TopicInput struct {
	Name model.Optional[string] `json:"name"`
	Desc model.Optional[string] `json:"desc"`
}

// EntryInput carries knowledge entry fields from a request body.
type EntryInput struct {
	Title   model.Optional[string]   `json:"title"`
	Content model.Optional[string]   `json:"content"`
	Tags    model.Optional[[]string] `json:"tags"`
	Links   model.Optional[[]string] `json:"links"`
	TopicID model.Optional[uint64]   `json:"topic_id"`
}

// EntryPage is one page of a filtered entry listing.
type EntryPage struct {
	Items    []*model.KnowledgeEntry `json:"items"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// KnowledgeService manages topics and knowledge entries.
type KnowledgeService struct {
	DB      *sql.DB
	Topics  *repository.TopicRepo
	Entries *repository.EntryRepo
	Logs    *repository.StudyLogRepo
}

func NewKnowledgeService(db *sql.DB) *KnowledgeService {
	return &KnowledgeService{
		DB:      db,
		Topics:  repository.NewTopicRepo(db),
		Entries: repository.NewEntryRepo(db),
		Logs:    repository.NewStudyLogRepo(db),
	}
}

// ListTopics returns the caller's topics, newest first.
func (s *KnowledgeService) ListTopics(ctx context.Context, userID uint64) ([]*model.Topic, error) {
	return s.Topics.ListByOwner(ctx, userID)
}

// CreateTopic stores a topic; the name is required.
func (s *KnowledgeService) CreateTopic(ctx context.Context, userID uint64, in TopicInput) (*model.Topic, error) {
	name := strings.TrimSpace(in.Name.Value)
	if name == "" {
		return nil, apperror.ErrMissingTopicName
	}
	t := &model.Topic{UserID: userID, Name: name, Desc: in.Desc.Ptr()}
	if err := s.Topics.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTopic applies a partial update.
func (s *KnowledgeService) UpdateTopic(ctx context.Context, userID, topicID uint64, in TopicInput) (*model.Topic, error) {
	t, err := s.Topics.GetByIDAndOwner(ctx, topicID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if in.Name.Set {
		name := strings.TrimSpace(in.Name.Value)
		if name == "" {
			return nil, apperror.ErrMissingTopicName
		}
		t.Name = name
	}
	if in.Desc.Set {
		t.Desc = in.Desc.Ptr()
	}
	if err := s.Topics.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTopic removes a topic. Entries filed under it are kept and lose
// their topic reference.
func (s *KnowledgeService) DeleteTopic(ctx context.Context, userID, topicID uint64) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		topics := s.Topics.WithTx(tx)
		if _, err := topics.GetByIDAndOwner(ctx, topicID, userID); err != nil {
			return notFound(err)
		}
		if err := s.Entries.WithTx(tx).DetachTopic(ctx, topicID, userID); err != nil {
			return err
		}
		return notFound(topics.Delete(ctx, topicID, userID))
	})
}

// ListEntries returns one page of the caller's entries matching f. Page
// and page size are clamped to sane bounds.
func (s *KnowledgeService) ListEntries(ctx context.Context, userID uint64, f repository.EntryFilter) (*EntryPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	items, total, err := s.Entries.ListByOwner(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return &EntryPage{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize}, nil
}

// GetEntry returns one of the caller's entries.
func (s *KnowledgeService) GetEntry(ctx context.Context, userID, entryID uint64) (*model.KnowledgeEntry, error) {
	e, err := s.Entries.GetByIDAndOwner(ctx, entryID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

// CreateEntry stores an entry. Title and content must be non-blank and a
// referenced topic must belong to the caller.
func (s *KnowledgeService) CreateEntry(ctx context.Context, userID uint64, in EntryInput) (*model.KnowledgeEntry, error) {
	title := strings.TrimSpace(in.Title.Value)
	content := strings.TrimSpace(in.Content.Value)
	if title == "" || content == "" {
		return nil, apperror.ErrMissingTitleOrContent
	}
	topicID, err := s.ownedTopic(ctx, userID, in.TopicID)
	if err != nil {
		return nil, err
	}
	e := &model.KnowledgeEntry{
		UserID:  userID,
		TopicID: topicID,
		Title:   title,
		Content: content,
		Tags:    model.NormalizeStrings(in.Tags.Value),
		Links:   model.NormalizeStrings(in.Links.Value),
	}
	if err := s.Entries.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry applies a partial update.
func (s *KnowledgeService) UpdateEntry(ctx context.Context, userID, entryID uint64, in EntryInput) (*model.KnowledgeEntry, error) {
	e, err := s.Entries.GetByIDAndOwner(ctx, entryID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if title == "" {
			return nil, apperror.ErrMissingTitleOrContent
		}
		e.Title = title
	}
	if in.Content.Set {
		content := strings.TrimSpace(in.Content.Value)
		if content == "" {
			return nil, apperror.ErrMissingTitleOrContent
		}
		e.Content = content
	}
	if in.Tags.Set {
		e.Tags = model.NormalizeStrings(in.Tags.Value)
	}
	if in.Links.Set {
		e.Links = model.NormalizeStrings(in.Links.Value)
	}
	if in.TopicID.Set {
		if e.TopicID, err = s.ownedTopic(ctx, userID, in.TopicID); err != nil {
			return nil, err
		}
	}
	if err := s.Entries.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEntry removes an entry together with its study logs.
func (s *KnowledgeService) DeleteEntry(ctx context.Context, userID, entryID uint64) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		entries := s.Entries.WithTx(tx)
		if _, err := entries.GetByIDAndOwner(ctx, entryID, userID); err != nil {
			return notFound(err)
		}
		if err := s.Logs.WithTx(tx).DeleteByEntry(ctx, entryID, userID); err != nil {
			return err
		}
		return notFound(entries.Delete(ctx, entryID, userID))
	})
}

// ownedTopic resolves an optional topic reference. Zero and null mean no
// topic; any other id must name one of the caller's topics.
func (s *KnowledgeService) ownedTopic(ctx context.Context, userID uint64, ref model.Optional[uint64]) (*uint64, error) {
	if !ref.Present() || ref.Value == 0 {
		return nil, nil
	}
	t, err := s.Topics.GetByIDAndOwner(ctx, ref.Value, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &t.ID, nil
}
