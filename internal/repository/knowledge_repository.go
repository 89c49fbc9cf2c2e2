package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ebbingassist/backend/internal/model"
)

// EntryRepo encapsulates queries on the `knowledge_entries` table.
type EntryRepo struct{ DB DBTX }

func NewEntryRepo(db DBTX) *EntryRepo { return &EntryRepo{DB: db} }

// WithTx returns a copy bound to tx.
func (r *EntryRepo) WithTx(tx *sql.Tx) *EntryRepo { return &EntryRepo{DB: tx} }

const entryColumns = "id, user_id, topic_id, title, content, tags, links, created_at, updated_at"

// EntryFilter narrows ListByOwner. All set fields combine with AND.
type EntryFilter struct {
	Keyword  string  // case-insensitive substring of title OR content
	Tag      string  // exact tag membership
	TopicID  *uint64 // entries filed under this topic
	Page     int     // 1-based
	PageSize int
}

// Create inserts e and fills its id and timestamps.
func (r *EntryRepo) Create(ctx context.Context, e *model.KnowledgeEntry) error {
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO knowledge_entries (user_id, topic_id, title, content, tags, links, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		e.UserID, e.TopicID, e.Title, e.Content, e.Tags, e.Links, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return err
	}
	e.ID, err = lastID(res)
	return err
}

// GetByIDAndOwner fetches an entry only if it belongs to userID.
func (r *EntryRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.KnowledgeEntry, error) {
	e, err := scanEntry(r.DB.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM knowledge_entries WHERE id=? AND user_id=?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// ListByOwner returns one page of matching entries, most recently updated
// first, together with the number of matches across all pages.
func (r *EntryRepo) ListByOwner(ctx context.Context, userID uint64, f EntryFilter) ([]*model.KnowledgeEntry, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := "%" + likeEscape(strings.ToLower(kw)) + "%"
		where = append(where, "(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(content) LIKE ? ESCAPE '!')")
		args = append(args, pattern, pattern)
	}
	if f.Tag != "" {
		where = append(where, "tags LIKE ? ESCAPE '!'")
		args = append(args, tagPattern(f.Tag))
	}
	if f.TopicID != nil {
		where = append(where, "topic_id = ?")
		args = append(args, *f.TopicID)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM knowledge_entries WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	q := "SELECT " + entryColumns + " FROM knowledge_entries WHERE " + cond +
		" ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.DB.QueryContext(ctx, q, append(args, size, (page-1)*size)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*model.KnowledgeEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// Update writes every editable column of e and bumps updated_at.
func (r *EntryRepo) Update(ctx context.Context, e *model.KnowledgeEntry) error {
	e.UpdatedAt = now()
	_, err := r.DB.ExecContext(ctx,
		"UPDATE knowledge_entries SET topic_id=?, title=?, content=?, tags=?, links=?, updated_at=? WHERE id=? AND user_id=?",
		e.TopicID, e.Title, e.Content, e.Tags, e.Links, e.UpdatedAt, e.ID, e.UserID)
	return err
}

// Delete removes the entry. Its study logs must be removed first.
func (r *EntryRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM knowledge_entries WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

// DetachTopic clears the topic reference of every entry filed under it.
func (r *EntryRepo) DetachTopic(ctx context.Context, topicID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE knowledge_entries SET topic_id=NULL WHERE topic_id=? AND user_id=?", topicID, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*model.KnowledgeEntry, error) {
	var (
		e     model.KnowledgeEntry
		topic sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.UserID, &topic, &e.Title, &e.Content, &e.Tags, &e.Links, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if topic.Valid {
		id := uint64(topic.Int64)
		e.TopicID = &id
	}
	return &e, nil
}

// tagPattern matches a JSON-encoded tag list containing tag as a whole
// element: the element is searched in its quoted JSON form.
func tagPattern(tag string) string {
	b, _ := json.Marshal(tag)
	return "%" + likeEscape(string(b)) + "%"
}
