package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ebbingassist/backend/internal/model"
)

// StudyLogRepo encapsulates queries on the `study_logs` table.
type StudyLogRepo struct{ DB DBTX }

func NewStudyLogRepo(db DBTX) *StudyLogRepo { return &StudyLogRepo{DB: db} }

// WithTx returns a copy bound to tx.
func (r *StudyLogRepo) WithTx(tx *sql.Tx) *StudyLogRepo { return &StudyLogRepo{DB: tx} }

// Create inserts l and fills its id and creation time. The caller checks
// that the referenced entry belongs to l.UserID.
func (r *StudyLogRepo) Create(ctx context.Context, l *model.StudyLog) error {
	l.CreatedAt = now()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO study_logs (user_id, entry_id, note, logged_at, created_at) VALUES (?,?,?,?,?)",
		l.UserID, l.EntryID, l.Note, l.LoggedAt, l.CreatedAt)
	if err != nil {
		return err
	}
	l.ID, err = lastID(res)
	return err
}

// ListByOwner returns logs dated within [from, to], newest first. A nil
// bound leaves that side open.
func (r *StudyLogRepo) ListByOwner(ctx context.Context, userID uint64, from, to *model.Date) ([]*model.StudyLog, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if from != nil {
		where = append(where, "logged_at >= ?")
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, "logged_at <= ?")
		args = append(args, *to)
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, entry_id, note, logged_at, created_at FROM study_logs WHERE "+
			strings.Join(where, " AND ")+" ORDER BY logged_at DESC, id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.StudyLog{}
	for rows.Next() {
		var (
			l    model.StudyLog
			note sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.EntryID, &note, &l.LoggedAt, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Note = nullString(note)
		out = append(out, &l)
	}
	return out, rows.Err()
}

// DeleteByEntry removes every log referencing entryID.
func (r *StudyLogRepo) DeleteByEntry(ctx context.Context, entryID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM study_logs WHERE entry_id=? AND user_id=?", entryID, userID)
	return err
}
