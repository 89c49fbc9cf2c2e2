package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebbingassist/backend/internal/model"
)

// TopicRepo encapsulates queries on the `topics` table.
type TopicRepo struct{ DB DBTX }

func NewTopicRepo(db DBTX) *TopicRepo { return &TopicRepo{DB: db} }

// WithTx returns a copy bound to tx.
func (r *TopicRepo) WithTx(tx *sql.Tx) *TopicRepo { return &TopicRepo{DB: tx} }

// Create inserts t and fills its id and creation time.
func (r *TopicRepo) Create(ctx context.Context, t *model.Topic) error {
	t.CreatedAt = now()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO topics (user_id, name, description, created_at) VALUES (?,?,?,?)",
		t.UserID, t.Name, t.Desc, t.CreatedAt)
	if err != nil {
		return err
	}
	t.ID, err = lastID(res)
	return err
}

// GetByIDAndOwner fetches a topic only if it belongs to userID.
func (r *TopicRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.Topic, error) {
	var (
		t    model.Topic
		desc sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, name, description, created_at FROM topics WHERE id=? AND user_id=?",
		id, userID).Scan(&t.ID, &t.UserID, &t.Name, &desc, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.Desc = nullString(desc)
	return &t, nil
}

// ListByOwner returns the owner's topics, newest first.
func (r *TopicRepo) ListByOwner(ctx context.Context, userID uint64) ([]*model.Topic, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, name, description, created_at FROM topics WHERE user_id=? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Topic{}
	for rows.Next() {
		var (
			t    model.Topic
			desc sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &desc, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Desc = nullString(desc)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// Update writes name and description.
func (r *TopicRepo) Update(ctx context.Context, t *model.Topic) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE topics SET name=?, description=? WHERE id=? AND user_id=?",
		t.Name, t.Desc, t.ID, t.UserID)
	return err
}

// Delete removes the topic. Entries referencing it must be detached first
// (see EntryRepo.DetachTopic).
func (r *TopicRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM topics WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}
