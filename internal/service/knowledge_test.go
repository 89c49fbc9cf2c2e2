package service

import (
	"context"
	"testing"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/queue"
	"github.com/ebbingassist/backend/internal/repository"
	"github.com/ebbingassist/backend/internal/testutil"
)

func TestKnowledgeService_EntryValidationWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	uid := createUser(t, db, "a@example.com")
	svc := NewKnowledgeService(db)

	_, err := svc.CreateEntry(ctx, uid, EntryInput{Title: model.Some("   "), Content: model.Some("body")})
	wantAppError(t, err, apperror.ErrMissingTitleOrContent)
	_, err = svc.CreateEntry(ctx, uid, EntryInput{Title: model.Some("title")})
	wantAppError(t, err, apperror.ErrMissingTitleOrContent)

	page, err := svc.ListEntries(ctx, uid, repository.EntryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("rejected entries were stored: %+v", page)
	}
	if page.Page != 1 || page.PageSize != DefaultPageSize {
		t.Errorf("paging defaults = %d/%d", page.Page, page.PageSize)
	}
}

func TestKnowledgeService_EntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	uid := createUser(t, db, "a@example.com")
	svc := NewKnowledgeService(db)

	topic, err := svc.CreateTopic(ctx, uid, TopicInput{Name: model.Some(" Go "), Desc: model.Some("language")})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	created, err := svc.CreateEntry(ctx, uid, EntryInput{
		Title:   model.Some(" Channels "),
		Content: model.Some("unbuffered blocks"),
		Tags:    model.Some([]string{" go ", "", "concurrency"}),
		TopicID: model.Some(topic.ID),
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	got, err := svc.GetEntry(ctx, uid, created.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.Title != "Channels" || got.Content != "unbuffered blocks" {
		t.Errorf("title/content = %q/%q", got.Title, got.Content)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "concurrency" {
		t.Errorf("tags = %v", got.Tags)
	}
	if got.Links == nil || len(got.Links) != 0 {
		t.Errorf("links = %#v, want empty list", got.Links)
	}
	if got.TopicID == nil || *got.TopicID != topic.ID {
		t.Errorf("topic id = %v, want %d", got.TopicID, topic.ID)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	// explicit null clears the topic; absent fields stay as they are
	updated, err := svc.UpdateEntry(ctx, uid, created.ID, EntryInput{TopicID: model.Optional[uint64]{Set: true, Null: true}})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.TopicID != nil || updated.Title != "Channels" {
		t.Errorf("after update = %+v", updated)
	}

	_, err = svc.UpdateEntry(ctx, uid, created.ID, EntryInput{Content: model.Some(" ")})
	wantAppError(t, err, apperror.ErrMissingTitleOrContent)
}

func TestKnowledgeService_Ownership(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	svc := NewKnowledgeService(db)

	topic, _ := svc.CreateTopic(ctx, alice, TopicInput{Name: model.Some("private")})
	entry, _ := svc.CreateEntry(ctx, alice, EntryInput{Title: model.Some("t"), Content: model.Some("c")})

	_, err := svc.GetEntry(ctx, bob, entry.ID)
	wantAppError(t, err, apperror.ErrNotFound)
	_, err = svc.UpdateEntry(ctx, bob, entry.ID, EntryInput{Title: model.Some("mine now")})
	wantAppError(t, err, apperror.ErrNotFound)
	wantAppError(t, svc.DeleteEntry(ctx, bob, entry.ID), apperror.ErrNotFound)
	wantAppError(t, svc.DeleteTopic(ctx, bob, topic.ID), apperror.ErrNotFound)

	// filing an entry under someone else's topic is refused
	_, err = svc.CreateEntry(ctx, bob, EntryInput{Title: model.Some("t"), Content: model.Some("c"), TopicID: model.Some(topic.ID)})
	wantAppError(t, err, apperror.ErrNotFound)

	if topics, _ := svc.ListTopics(ctx, bob); len(topics) != 0 {
		t.Errorf("bob sees %d topics", len(topics))
	}
}

func TestKnowledgeService_Deletes(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	uid := createUser(t, db, "a@example.com")
	svc := NewKnowledgeService(db)
	logs := NewStudyLogService(repository.NewStudyLogRepo(db), repository.NewEntryRepo(db), queue.NoopPublisher{}, testutil.Logger())

	topic, _ := svc.CreateTopic(ctx, uid, TopicInput{Name: model.Some("Go")})
	entry, _ := svc.CreateEntry(ctx, uid, EntryInput{Title: model.Some("t"), Content: model.Some("c"), TopicID: model.Some(topic.ID)})

	if err := svc.DeleteTopic(ctx, uid, topic.ID); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	got, err := svc.GetEntry(ctx, uid, entry.ID)
	if err != nil {
		t.Fatalf("entry gone with its topic: %v", err)
	}
	if got.TopicID != nil {
		t.Errorf("topic id = %d after topic delete", *got.TopicID)
	}

	if _, err := logs.Create(ctx, uid, StudyLogInput{EntryID: model.Some(entry.ID)}); err != nil {
		t.Fatalf("create log: %v", err)
	}
	if err := svc.DeleteEntry(ctx, uid, entry.ID); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	list, err := logs.List(ctx, uid, nil, nil)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if list.Total != 0 {
		t.Errorf("%d logs survived their entry", list.Total)
	}
}

func TestKnowledgeService_PageSizeClamped(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	uid := createUser(t, db, "a@example.com")
	svc := NewKnowledgeService(db)

	page, err := svc.ListEntries(ctx, uid, repository.EntryFilter{Page: -3, PageSize: 10000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != 1 || page.PageSize != MaxPageSize {
		t.Errorf("paging = %d/%d, want 1/%d", page.Page, page.PageSize, MaxPageSize)
	}
}
