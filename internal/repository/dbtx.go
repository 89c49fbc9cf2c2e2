package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so a repository can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// now is the timestamp written to created_at/updated_at columns. DATETIME
// has second precision on MySQL, so sub-second parts are dropped up front.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Second) }

// affected converts a zero-row UPDATE/DELETE into ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// lastID returns the auto-increment id of an INSERT.
func lastID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// likeEscape escapes LIKE wildcards with '!' which both MySQL and SQLite
// accept through an explicit ESCAPE clause.
func likeEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '!', '%', '_':
			out = append(out, '!')
		}
		out = append(out, r)
	}
	return string(out)
}
