package service

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"strings"

	"github.com/ebbingassist/backend/internal/apperror"
	"github.com/ebbingassist/backend/internal/database"
	"github.com/ebbingassist/backend/internal/model"
	"github.com/ebbingassist/backend/internal/queue"
	"github.com/ebbingassist/backend/internal/repository"
)

// Recompute derives a plan's status and progress from the statuses of its
// tasks. It is pure: the caller persists the result in the same
// transaction as the task change that triggered it.
//
// With no tasks, progress is 0 and the current status is kept (defaulting
// to not_started). Otherwise progress is done/total rounded to four
// decimals and the status is completed, not_started or in_progress.
// Recompute never yields delayed; that status only comes from an explicit
// plan update and is replaced by the next task change.
func Recompute(current model.PlanStatus, statuses []model.TaskStatus) (model.PlanStatus, float64) {
	total := len(statuses)
	if total == 0 {
		if current == "" {
			current = model.PlanNotStarted
		}
		return current, 0
	}
	done := 0
	for _, s := range statuses {
		if s == model.TaskDone {
			done++
		}
	}
	progress := math.Round(float64(done)/float64(total)*10000) / 10000
	switch done {
	case total:
		return model.PlanCompleted, progress
	case 0:
		return model.PlanNotStarted, progress
	default:
		return model.PlanInProgress, progress
	}
}

// PlanInput carries plan fields from a request body. On create, absent
// fields take their defaults; on update, only present fields change.
type PlanInput struct {
	Title    model.Optional[string]   `json:"title"`
	Goal     model.Optional[string]   `json:"goal"`
	Deadline model.Optional[string]   `json:"deadline"`
	Priority model.Optional[string]   `json:"priority"`
	Tags     model.Optional[[]string] `json:"tags"`
	Status   model.Optional[string]   `json:"status"`
}

// TaskInput carries task fields from a request body, with the same
// create/update semantics as PlanInput.
type TaskInput struct {
	Title           model.Optional[string]   `json:"title"`
	Desc            model.Optional[string]   `json:"desc"`
	EstimateMinutes model.Optional[int]      `json:"estimate_minutes"`
	Priority        model.Optional[string]   `json:"priority"`
	Status          model.Optional[string]   `json:"status"`
	DueDate         model.Optional[string]   `json:"due_date"`
	Tags            model.Optional[[]string] `json:"tags"`
	OrderNo         model.Optional[int]      `json:"order_no"`
	FocusMinutes    model.Optional[int]      `json:"focus_minutes"`
}

// PlanService is the plan/task engine. Every task mutation and the plan
// recomputation it triggers commit together.
type PlanService struct {
	DB     *sql.DB
	Plans  *repository.PlanRepo
	Tasks  *repository.TaskRepo
	Events queue.Publisher
	Logger *slog.Logger
}

func NewPlanService(db *sql.DB, events queue.Publisher, logger *slog.Logger) *PlanService {
	return &PlanService{
		DB:     db,
		Plans:  repository.NewPlanRepo(db),
		Tasks:  repository.NewTaskRepo(db),
		Events: events,
		Logger: logger,
	}
}

// CreatePlan validates and stores a new plan.
func (s *PlanService) CreatePlan(ctx context.Context, userID uint64, in PlanInput) (*model.Plan, error) {
	title := strings.TrimSpace(in.Title.Value)
	if title == "" {
		return nil, apperror.ErrMissingPlanTitle
	}
	deadline, err := parseOptionalDate(in.Deadline)
	if err != nil {
		return nil, err
	}
	status := model.PlanNotStarted
	if in.Status.Set {
		status = model.PlanStatus(in.Status.Value)
		if in.Status.Null || !status.Valid() {
			return nil, apperror.ErrInvalidPlanStatus
		}
	}
	p := &model.Plan{
		UserID:   userID,
		Title:    title,
		Goal:     in.Goal.Ptr(),
		Deadline: deadline,
		Priority: priorityOr(in.Priority, model.DefaultPriority),
		Tags:     model.NormalizeStrings(in.Tags.Value),
		Status:   status,
	}
	if err := s.Plans.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePlan applies a partial update. It does not touch progress; an
// explicit status (delayed included) is stored as given.
func (s *PlanService) UpdatePlan(ctx context.Context, userID, planID uint64, in PlanInput) (*model.Plan, error) {
	var p *model.Plan
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		plans := s.Plans.WithTx(tx)
		var err error
		if p, err = plans.GetByIDAndOwner(ctx, planID, userID); err != nil {
			return notFound(err)
		}
		if in.Title.Set {
			title := strings.TrimSpace(in.Title.Value)
			if title == "" {
				return apperror.ErrMissingPlanTitle
			}
			p.Title = title
		}
		if in.Goal.Set {
			p.Goal = in.Goal.Ptr()
		}
		if in.Deadline.Set {
			if p.Deadline, err = parseOptionalDate(in.Deadline); err != nil {
				return err
			}
		}
		if in.Priority.Set {
			p.Priority = priorityOr(in.Priority, model.DefaultPriority)
		}
		if in.Tags.Set {
			p.Tags = model.NormalizeStrings(in.Tags.Value)
		}
		if in.Status.Set {
			status := model.PlanStatus(in.Status.Value)
			if in.Status.Null || !status.Valid() {
				return apperror.ErrInvalidPlanStatus
			}
			p.Status = status
		}
		return plans.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePlan removes a plan and all of its tasks.
func (s *PlanService) DeletePlan(ctx context.Context, userID, planID uint64) error {
	return database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		plans := s.Plans.WithTx(tx)
		if _, err := plans.GetByIDAndOwner(ctx, planID, userID); err != nil {
			return notFound(err)
		}
		if err := s.Tasks.WithTx(tx).DeleteByPlan(ctx, planID, userID); err != nil {
			return err
		}
		return notFound(plans.Delete(ctx, planID, userID))
	})
}

// ListPlans returns the caller's plans matching f.
func (s *PlanService) ListPlans(ctx context.Context, userID uint64, f repository.PlanFilter) ([]*model.Plan, error) {
	return s.Plans.ListByOwner(ctx, userID, f)
}

// GetPlan returns a plan with its tasks ordered by order_no.
func (s *PlanService) GetPlan(ctx context.Context, userID, planID uint64) (*model.PlanDetail, error) {
	p, err := s.Plans.GetByIDAndOwner(ctx, planID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	tasks, err := s.Tasks.ListByPlan(ctx, planID, userID)
	if err != nil {
		return nil, err
	}
	return &model.PlanDetail{Plan: *p, Tasks: tasks}, nil
}

// CreateTask adds a task to one of the caller's plans and recomputes the
// plan.
func (s *PlanService) CreateTask(ctx context.Context, userID, planID uint64, in TaskInput) (*model.Task, error) {
	var (
		t    *model.Task
		plan *model.Plan
		prev model.PlanStatus
	)
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		plans, tasks := s.Plans.WithTx(tx), s.Tasks.WithTx(tx)
		var err error
		if plan, err = plans.GetByIDAndOwner(ctx, planID, userID); err != nil {
			return notFound(err)
		}
		prev = plan.Status

		title := strings.TrimSpace(in.Title.Value)
		if title == "" {
			return apperror.ErrMissingTaskTitle
		}
		due, err := parseOptionalDate(in.DueDate)
		if err != nil {
			return err
		}
		status := model.TaskTodo
		if in.Status.Set {
			status = model.TaskStatus(in.Status.Value)
			if in.Status.Null || !status.Valid() {
				return apperror.ErrInvalidTaskStatus
			}
		}
		t = &model.Task{
			PlanID:          plan.ID,
			UserID:          userID,
			Title:           title,
			Desc:            in.Desc.Ptr(),
			EstimateMinutes: in.EstimateMinutes.Ptr(),
			Priority:        priorityOr(in.Priority, model.DefaultPriority),
			Status:          status,
			DueDate:         due,
			Tags:            model.NormalizeStrings(in.Tags.Value),
			OrderNo:         in.OrderNo.Value,
			FocusMinutes:    in.FocusMinutes.Value,
		}
		if err := tasks.Create(ctx, t); err != nil {
			return err
		}
		return recompute(ctx, plans, tasks, plan)
	})
	if err != nil {
		return nil, err
	}
	s.afterTaskChange(userID, nil, prev, plan)
	return t, nil
}

// UpdateTask applies a partial update to a task and recomputes its plan.
func (s *PlanService) UpdateTask(ctx context.Context, userID, taskID uint64, in TaskInput) (*model.Task, error) {
	var (
		t    *model.Task
		plan *model.Plan
		prev model.PlanStatus
	)
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		plans, tasks := s.Plans.WithTx(tx), s.Tasks.WithTx(tx)
		var err error
		if t, err = tasks.GetByIDAndOwner(ctx, taskID, userID); err != nil {
			return notFound(err)
		}
		if plan, err = plans.GetByIDAndOwner(ctx, t.PlanID, userID); err != nil {
			return notFound(err)
		}
		prev = plan.Status

		if in.Title.Set {
			title := strings.TrimSpace(in.Title.Value)
			if title == "" {
				return apperror.ErrMissingTaskTitle
			}
			t.Title = title
		}
		if in.Desc.Set {
			t.Desc = in.Desc.Ptr()
		}
		if in.EstimateMinutes.Set {
			t.EstimateMinutes = in.EstimateMinutes.Ptr()
		}
		if in.Priority.Set {
			t.Priority = priorityOr(in.Priority, model.DefaultPriority)
		}
		if in.Status.Set {
			status := model.TaskStatus(in.Status.Value)
			if in.Status.Null || !status.Valid() {
				return apperror.ErrInvalidTaskStatus
			}
			t.Status = status
		}
		if in.DueDate.Set {
			if t.DueDate, err = parseOptionalDate(in.DueDate); err != nil {
				return err
			}
		}
		if in.Tags.Set {
			t.Tags = model.NormalizeStrings(in.Tags.Value)
		}
		if in.OrderNo.Set {
			t.OrderNo = in.OrderNo.Value
		}
		if in.FocusMinutes.Set {
			t.FocusMinutes = in.FocusMinutes.Value
		}
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		return recompute(ctx, plans, tasks, plan)
	})
	if err != nil {
		return nil, err
	}
	s.afterTaskChange(userID, nil, prev, plan)
	return t, nil
}

// CompleteTask marks a task done and recomputes its plan.
func (s *PlanService) CompleteTask(ctx context.Context, userID, taskID uint64) (*model.Task, error) {
	var (
		t    *model.Task
		plan *model.Plan
		prev model.PlanStatus
	)
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		plans, tasks := s.Plans.WithTx(tx), s.Tasks.WithTx(tx)
		var err error
		if t, err = tasks.GetByIDAndOwner(ctx, taskID, userID); err != nil {
			return notFound(err)
		}
		if plan, err = plans.GetByIDAndOwner(ctx, t.PlanID, userID); err != nil {
			return notFound(err)
		}
		prev = plan.Status
		t.Status = model.TaskDone
		if err := tasks.Update(ctx, t); err != nil {
			return err
		}
		return recompute(ctx, plans, tasks, plan)
	})
	if err != nil {
		return nil, err
	}
	s.afterTaskChange(userID, t, prev, plan)
	return t, nil
}

// recompute reloads the task statuses of plan inside the current
// transaction and stores the derived fields.
func recompute(ctx context.Context, plans *repository.PlanRepo, tasks *repository.TaskRepo, plan *model.Plan) error {
	statuses, err := tasks.StatusesByPlan(ctx, plan.ID)
	if err != nil {
		return err
	}
	plan.Status, plan.Progress = Recompute(plan.Status, statuses)
	return plans.SetDerived(ctx, plan)
}

// afterTaskChange publishes activity events once the transaction has
// committed. completed is non-nil for an explicit task completion.
func (s *PlanService) afterTaskChange(userID uint64, completed *model.Task, prev model.PlanStatus, plan *model.Plan) {
	if completed != nil {
		ev := queue.NewEvent(queue.EventTaskCompleted, userID)
		ev.PlanID, ev.TaskID, ev.Title, ev.Progress = plan.ID, completed.ID, completed.Title, plan.Progress
		queue.PublishAsync(s.Events, s.Logger, ev)
	}
	if prev != model.PlanCompleted && plan.Status == model.PlanCompleted {
		ev := queue.NewEvent(queue.EventPlanCompleted, userID)
		ev.PlanID, ev.Title, ev.Progress = plan.ID, plan.Title, plan.Progress
		queue.PublishAsync(s.Events, s.Logger, ev)
	}
}
