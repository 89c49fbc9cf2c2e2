package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/queue"
	"github.com/ebbingassist/backend/internal/repository"
)

// recorder is a queue.Publisher that keeps every event it receives.
type recorder struct {
	mu     sync.Mutex
	events []queue.Event
	got    chan struct{}
}

func newRecorder() *recorder { return &recorder{got: make(chan struct{}, 16)} }

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.got <- struct{}{}
	return nil
}

// wait blocks until n events arrived or fails the test after a second.
func (r *recorder) wait(t *testing.T, n int) []queue.Event {
	t.Helper()
	deadline := time.After(time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events", n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Event(nil), r.events...)
}

func createUser(t *testing.T, db *sql.DB, email string) uint64 {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "x"}
	if err := repository.NewUserRepo(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func wantAppError(t *testing.T, err error, want *apperror.Error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}
