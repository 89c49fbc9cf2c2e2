package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/testutil"
)

func newUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	if err := NewUserRepo(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestUserRepo_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	users := NewUserRepo(db)

	u := &model.User{Email: "  Alice@Example.COM ", PasswordHash: "hash"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == 0 || u.Email != "alice@example.com" || u.Timezone != "UTC" {
		t.Fatalf("unexpected user after create: %+v", u)
	}

	if err := users.Create(ctx, &model.User{Email: "alice@example.com", PasswordHash: "h"}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate email: err = %v, want ErrDuplicate", err)
	}

	got, err := users.GetByAccount(ctx, "ALICE@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetByAccount by email = %+v, %v", got, err)
	}

	phone := "13800000000"
	got.Phone = &phone
	if err := users.UpdateProfile(ctx, got); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	byPhone, err := users.GetByAccount(ctx, phone)
	if err != nil || byPhone.ID != u.ID {
		t.Fatalf("GetByAccount by phone = %+v, %v", byPhone, err)
	}

	bob := newUser(t, db, "bob@example.com")
	bob.Phone = &phone
	if err := users.UpdateProfile(ctx, bob); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate phone: err = %v, want ErrDuplicate", err)
	}

	if _, err := users.GetByAccount(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown account: err = %v, want ErrNotFound", err)
	}
	if _, err := users.GetByAccount(ctx, "   "); !errors.Is(err, ErrNotFound) {
		t.Errorf("blank account: err = %v, want ErrNotFound", err)
	}
}

func TestTokenRepo_RevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	u := newUser(t, db, "a@example.com")
	ledger := NewTokenRepo(db)

	revoked, err := ledger.IsRevoked(ctx, "01HZX")
	if err != nil || revoked {
		t.Fatalf("unknown token: revoked=%v err=%v", revoked, err)
	}

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	for i := 0; i < 2; i++ {
		if err := ledger.Revoke(ctx, &model.RevokedToken{TokenID: "01HZX", Kind: model.TokenAccess, UserID: u.ID, ExpiresAt: &exp}); err != nil {
			t.Fatalf("revoke #%d: %v", i+1, err)
		}
	}

	revoked, err = ledger.IsRevoked(ctx, "01HZX")
	if err != nil || !revoked {
		t.Fatalf("after revoke: revoked=%v err=%v", revoked, err)
	}

	row, err := ledger.Get(ctx, "01HZX")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row.Kind != model.TokenAccess || row.UserID != u.ID || row.ExpiresAt == nil {
		t.Errorf("unexpected ledger row: %+v", row)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM auth_tokens WHERE jti=?", "01HZX").Scan(&n); err != nil || n != 1 {
		t.Errorf("ledger rows = %d, %v; want 1", n, err)
	}
}

func TestEntryRepo_OwnershipAndFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	alice := newUser(t, db, "alice@example.com")
	bob := newUser(t, db, "bob@example.com")
	entries := NewEntryRepo(db)

	mk := func(owner uint64, title, content string, tags ...string) *model.KnowledgeEntry {
		e := &model.KnowledgeEntry{UserID: owner, Title: title, Content: content, Tags: model.NormalizeStrings(tags), Links: model.StringList{}}
		if err := entries.Create(ctx, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
		return e
	}
	goEntry := mk(alice.ID, "Go channels", "select and close", "go", "concurrency")
	mk(alice.ID, "SQL joins", "Inner and outer JOIN", "db")
	mk(alice.ID, "Gopher trivia", "mascot", "golang")
	mk(alice.ID, "100% literal", "percent sign", "misc")
	bobEntry := mk(bob.ID, "Go for bob", "private", "go")

	if _, err := entries.GetByIDAndOwner(ctx, bobEntry.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner get: err = %v, want ErrNotFound", err)
	}
	if err := entries.Delete(ctx, bobEntry.ID, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-owner delete: err = %v, want ErrNotFound", err)
	}

	items, total, err := entries.ListByOwner(ctx, alice.ID, EntryFilter{Tag: "go", PageSize: 20})
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != goEntry.ID {
		t.Errorf("tag go matched %d entries (total %d), want only %d", len(items), total, goEntry.ID)
	}

	_, total, err = entries.ListByOwner(ctx, alice.ID, EntryFilter{Keyword: "join", PageSize: 20})
	if err != nil || total != 1 {
		t.Errorf("keyword join: total=%d err=%v, want 1", total, err)
	}
	_, total, err = entries.ListByOwner(ctx, alice.ID, EntryFilter{Keyword: "%", PageSize: 20})
	if err != nil || total != 1 {
		t.Errorf("keyword %%: total=%d err=%v, want 1 (wildcards are literal)", total, err)
	}

	page, total, err := entries.ListByOwner(ctx, alice.ID, EntryFilter{Page: 2, PageSize: 3})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if total != 4 || len(page) != 1 {
		t.Errorf("page 2 = %d items (total %d), want 1 of 4", len(page), total)
	}
}

func TestEntryRepo_KeywordFoldsNonASCII(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	u := newUser(t, db, "u@example.com")
	entries := NewEntryRepo(db)

	e := &model.KnowledgeEntry{UserID: u.ID, Title: "Über Äpfel", Content: "Straße und ÉCOLE", Tags: model.StringList{}, Links: model.StringList{}}
	if err := entries.Create(ctx, e); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	other := &model.KnowledgeEntry{UserID: u.ID, Title: "Uber apfel", Content: "ascii only", Tags: model.StringList{}, Links: model.StringList{}}
	if err := entries.Create(ctx, other); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	for _, kw := range []string{"Über", "über", "ÜBER", "äpfel", "école", "STRASSE"} {
		items, total, err := entries.ListByOwner(ctx, u.ID, EntryFilter{Keyword: kw, PageSize: 20})
		if err != nil {
			t.Fatalf("keyword %q: %v", kw, err)
		}
		want := 1
		if kw == "STRASSE" {
			// simple case folding keeps ß distinct from ss
			want = 0
		}
		if total != want {
			t.Errorf("keyword %q: total = %d, want %d", kw, total, want)
			continue
		}
		if want == 1 && items[0].ID != e.ID {
			t.Errorf("keyword %q matched entry %d, want %d", kw, items[0].ID, e.ID)
		}
	}
}

func TestEntryRepo_DetachTopic(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	u := newUser(t, db, "a@example.com")
	topics := NewTopicRepo(db)
	entries := NewEntryRepo(db)

	topic := &model.Topic{UserID: u.ID, Name: "Go"}
	if err := topics.Create(ctx, topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	e := &model.KnowledgeEntry{UserID: u.ID, TopicID: &topic.ID, Title: "t", Content: "c"}
	if err := entries.Create(ctx, e); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	filed, total, err := entries.ListByOwner(ctx, u.ID, EntryFilter{TopicID: &topic.ID, PageSize: 20})
	if err != nil || total != 1 || len(filed) != 1 {
		t.Fatalf("topic filter: total=%d err=%v", total, err)
	}

	if err := entries.DetachTopic(ctx, topic.ID, u.ID); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := topics.Delete(ctx, topic.ID, u.ID); err != nil {
		t.Fatalf("delete topic: %v", err)
	}
	got, err := entries.GetByIDAndOwner(ctx, e.ID, u.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if got.TopicID != nil {
		t.Errorf("topic id = %d, want nil", *got.TopicID)
	}
}

func TestPlanRepo_ListOrderingAndFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	u := newUser(t, db, "a@example.com")
	plans := NewPlanRepo(db)

	mk := func(title, deadline string, tags ...string) *model.Plan {
		p := &model.Plan{UserID: u.ID, Title: title, Priority: model.DefaultPriority, Status: model.PlanNotStarted, Tags: model.NormalizeStrings(tags)}
		if deadline != "" {
			d, err := model.ParseDate(deadline)
			if err != nil {
				t.Fatal(err)
			}
			p.Deadline = &d
		}
		if err := plans.Create(ctx, p); err != nil {
			t.Fatalf("create plan: %v", err)
		}
		return p
	}
	noDeadline := mk("someday", "")
	late := mk("late", "2025-06-30", "exam")
	early := mk("early", "2025-01-15")

	all, err := plans.ListByOwner(ctx, u.ID, PlanFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []uint64{early.ID, late.ID, noDeadline.ID}
	if len(all) != len(want) {
		t.Fatalf("got %d plans, want %d", len(all), len(want))
	}
	for i, p := range all {
		if p.ID != want[i] {
			t.Errorf("position %d = plan %d, want %d", i, p.ID, want[i])
		}
	}

	from, _ := model.ParseDate("2025-02-01")
	ranged, err := plans.ListByOwner(ctx, u.ID, PlanFilter{From: &from})
	if err != nil || len(ranged) != 1 || ranged[0].ID != late.ID {
		t.Errorf("from filter = %v, %v; want only late plan", ranged, err)
	}

	tagged, err := plans.ListByOwner(ctx, u.ID, PlanFilter{Tag: "exam"})
	if err != nil || len(tagged) != 1 || tagged[0].ID != late.ID {
		t.Errorf("tag filter = %v, %v; want only late plan", tagged, err)
	}

	got, err := plans.GetByIDAndOwner(ctx, late.ID, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Deadline == nil || got.Deadline.String() != "2025-06-30" || !got.Tags.Contains("exam") {
		t.Errorf("round trip = %+v", got)
	}
}

func TestTaskRepo_ListByPlanOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	u := newUser(t, db, "a@example.com")
	plan := &model.Plan{UserID: u.ID, Title: "p", Priority: "medium", Status: model.PlanNotStarted}
	if err := NewPlanRepo(db).Create(ctx, plan); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	tasks := NewTaskRepo(db)

	for _, spec := range []struct {
		title string
		order int
	}{{"b", 2}, {"a", 1}, {"c", 2}} {
		task := &model.Task{PlanID: plan.ID, UserID: u.ID, Title: spec.title, Priority: "medium", Status: model.TaskTodo, OrderNo: spec.order}
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	list, err := tasks.ListByPlan(ctx, plan.ID, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var titles string
	for _, task := range list {
		titles += task.Title
	}
	if titles != "abc" {
		t.Errorf("order = %q, want abc", titles)
	}

	statuses, err := tasks.StatusesByPlan(ctx, plan.ID)
	if err != nil || len(statuses) != 3 {
		t.Errorf("statuses = %v, %v", statuses, err)
	}

	if err := tasks.DeleteByPlan(ctx, plan.ID, u.ID); err != nil {
		t.Fatalf("delete by plan: %v", err)
	}
	if list, _ := tasks.ListByPlan(ctx, plan.ID, u.ID); len(list) != 0 {
		t.Errorf("tasks left after delete: %d", len(list))
	}
}

func TestStudyLogRepo_Window(t *testing.T) {
	ctx := context.Background()
	db := testutil.OpenDB(t)
	u := newUser(t, db, "a@example.com")
	e := &model.KnowledgeEntry{UserID: u.ID, Title: "t", Content: "c"}
	if err := NewEntryRepo(db).Create(ctx, e); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	logs := NewStudyLogRepo(db)

	for _, day := range []string{"2025-03-01", "2025-03-05", "2025-03-09"} {
		d, _ := model.ParseDate(day)
		if err := logs.Create(ctx, &model.StudyLog{UserID: u.ID, EntryID: e.ID, LoggedAt: d}); err != nil {
			t.Fatalf("create log: %v", err)
		}
	}

	from, _ := model.ParseDate("2025-03-02")
	to, _ := model.ParseDate("2025-03-09")
	got, err := logs.ListByOwner(ctx, u.ID, &from, &to)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].LoggedAt.String() != "2025-03-09" || got[1].LoggedAt.String() != "2025-03-05" {
		t.Errorf("window = %+v", got)
	}

	open, err := logs.ListByOwner(ctx, u.ID, nil, &from)
	if err != nil || len(open) != 1 {
		t.Errorf("open-start window = %d logs, %v; want 1", len(open), err)
	}

	if err := logs.DeleteByEntry(ctx, e.ID, u.ID); err != nil {
		t.Fatalf("delete by entry: %v", err)
	}
	if rest, _ := logs.ListByOwner(ctx, u.ID, nil, nil); len(rest) != 0 {
		t.Errorf("logs left after delete: %d", len(rest))
	}
}

func TestLikeEscape(t *testing.T) {
	if got := likeEscape("50%_off!"); got != "50!%!_off!!" {
		t.Errorf("likeEscape = %q", got)
	}
	if got := tagPattern("go"); got != `%"go"%` {
		t.Errorf("tagPattern = %q", got)
	}
}
