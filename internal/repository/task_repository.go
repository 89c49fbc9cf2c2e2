package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ebbingassist/backend/internal/model"
)

// TaskRepo encapsulates queries on the `tasks` table.
type TaskRepo struct{ DB DBTX }

func NewTaskRepo(db DBTX) *TaskRepo { return &TaskRepo{DB: db} }

// WithTx returns a copy bound to tx.
func (r *TaskRepo) WithTx(tx *sql.Tx) *TaskRepo { return &TaskRepo{DB: tx} }

const taskColumns = "id, plan_id, user_id, title, description, estimate_minutes, priority, status, due_date, tags, order_no, focus_minutes, created_at, updated_at"

// Create inserts t and fills its id and timestamps.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (plan_id, user_id, title, description, estimate_minutes, priority, status, due_date, tags, order_no, focus_minutes, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)",
		t.PlanID, t.UserID, t.Title, t.Desc, t.EstimateMinutes, t.Priority, string(t.Status),
		t.DueDate, t.Tags, t.OrderNo, t.FocusMinutes, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}
	t.ID, err = lastID(res)
	return err
}

// GetByIDAndOwner fetches a task only if it belongs to userID.
func (r *TaskRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.Task, error) {
	t, err := scanTask(r.DB.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=? AND user_id=?", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

// ListByPlan returns the tasks of a plan ordered by order_no, then id.
func (r *TaskRepo) ListByPlan(ctx context.Context, planID, userID uint64) ([]*model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE plan_id=? AND user_id=? ORDER BY order_no ASC, id ASC",
		planID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// StatusesByPlan returns the status of every task of a plan. It is the
// only input the plan recomputation needs.
func (r *TaskRepo) StatusesByPlan(ctx context.Context, planID uint64) ([]model.TaskStatus, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT status FROM tasks WHERE plan_id=?", planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TaskStatus{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, model.TaskStatus(s))
	}
	return out, rows.Err()
}

// Update writes every editable column of t and bumps updated_at.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = now()
	_, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET title=?, description=?, estimate_minutes=?, priority=?, status=?, due_date=?, tags=?, order_no=?, focus_minutes=?, updated_at=? WHERE id=? AND user_id=?",
		t.Title, t.Desc, t.EstimateMinutes, t.Priority, string(t.Status), t.DueDate, t.Tags,
		t.OrderNo, t.FocusMinutes, t.UpdatedAt, t.ID, t.UserID)
	return err
}

// DeleteByPlan removes every task of a plan.
func (r *TaskRepo) DeleteByPlan(ctx context.Context, planID, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM tasks WHERE plan_id=? AND user_id=?", planID, userID)
	return err
}

func scanTask(s rowScanner) (*model.Task, error) {
	var (
		t      model.Task
		desc   sql.NullString
		est    sql.NullInt64
		due    model.NullDate
		status string
	)
	if err := s.Scan(&t.ID, &t.PlanID, &t.UserID, &t.Title, &desc, &est, &t.Priority, &status,
		&due, &t.Tags, &t.OrderNo, &t.FocusMinutes, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Desc = nullString(desc)
	if est.Valid {
		v := int(est.Int64)
		t.EstimateMinutes = &v
	}
	t.DueDate = due.Ptr()
	t.Status = model.TaskStatus(status)
	return &t, nil
}
