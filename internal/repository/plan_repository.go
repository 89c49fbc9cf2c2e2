package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ebbingassist/backend/internal/model"
)

// PlanRepo encapsulates queries on the `plans` table.
type PlanRepo struct{ DB DBTX }

func NewPlanRepo(db DBTX) *PlanRepo { return &PlanRepo{DB: db} }

// WithTx returns a copy bound to tx.
func (r *PlanRepo) WithTx(tx *sql.Tx) *PlanRepo { return &PlanRepo{DB: tx} }

const planColumns = "id, user_id, title, goal, deadline, priority, tags, status, progress, created_at, updated_at"

// PlanFilter narrows ListByOwner. Empty fields are ignored.
type PlanFilter struct {
	Status   string
	Priority string
	Tag      string
	// Deadline range, inclusive. Plans without a deadline never match a
	// bounded range.
	From *model.Date
	To   *model.Date
}

// Create inserts p and fills its id and timestamps.
func (r *PlanRepo) Create(ctx context.Context, p *model.Plan) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO plans (user_id, title, goal, deadline, priority, tags, status, progress, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?)",
		p.UserID, p.Title, p.Goal, p.Deadline, p.Priority, p.Tags, string(p.Status), p.Progress, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	p.ID, err = lastID(res)
	return err
}

// GetByIDAndOwner fetches a plan only if it belongs to userID.
func (r *PlanRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.Plan, error) {
	p, err := scanPlan(r.DB.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM plans WHERE id=? AND user_id=?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// ListByOwner returns matching plans ordered by deadline (plans without
// one last), then newest first.
func (r *PlanRepo) ListByOwner(ctx context.Context, userID uint64, f PlanFilter) ([]*model.Plan, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, f.Priority)
	}
	if f.Tag != "" {
		where = append(where, "tags LIKE ? ESCAPE '!'")
		args = append(args, tagPattern(f.Tag))
	}
	if f.From != nil {
		where = append(where, "deadline >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		where = append(where, "deadline <= ?")
		args = append(args, *f.To)
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+planColumns+" FROM plans WHERE "+strings.Join(where, " AND ")+
			" ORDER BY deadline IS NULL, deadline ASC, id DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes every column of p, derived fields included.
func (r *PlanRepo) Update(ctx context.Context, p *model.Plan) error {
	p.UpdatedAt = now()
	_, err := r.DB.ExecContext(ctx,
		"UPDATE plans SET title=?, goal=?, deadline=?, priority=?, tags=?, status=?, progress=?, updated_at=? WHERE id=? AND user_id=?",
		p.Title, p.Goal, p.Deadline, p.Priority, p.Tags, string(p.Status), p.Progress, p.UpdatedAt, p.ID, p.UserID)
	return err
}

// SetDerived stores the recomputed status and progress of a plan.
func (r *PlanRepo) SetDerived(ctx context.Context, p *model.Plan) error {
	p.UpdatedAt = now()
	_, err := r.DB.ExecContext(ctx,
		"UPDATE plans SET status=?, progress=?, updated_at=? WHERE id=? AND user_id=?",
		string(p.Status), p.Progress, p.UpdatedAt, p.ID, p.UserID)
	return err
}

// Delete removes the plan. Its tasks must be removed first in the same
// transaction.
func (r *PlanRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM plans WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return err
	}
	return affected(res)
}

func scanPlan(s rowScanner) (*model.Plan, error) {
	var (
		p        model.Plan
		goal     sql.NullString
		deadline model.NullDate
		status   string
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Title, &goal, &deadline, &p.Priority, &p.Tags,
		&status, &p.Progress, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Goal = nullString(goal)
	p.Deadline = deadline.Ptr()
	p.Status = model.PlanStatus(status)
	return &p, nil
}
