package model

import "time"

// PlanStatus is the lifecycle state of a plan. Only PlanDelayed is never
// derived from task state; it can only be set explicitly.
type PlanStatus string

const (
	PlanNotStarted PlanStatus = "not_started"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
	PlanDelayed    PlanStatus = "delayed"
)

// Valid reports whether s belongs to the plan status enumeration.
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanNotStarted, PlanInProgress, PlanCompleted, PlanDelayed:
		return true
	}
	return false
}

// TaskStatus is the state of a single task.
type TaskStatus string

const (
	TaskTodo    TaskStatus = "todo"
	TaskDoing   TaskStatus = "doing"
	TaskDone    TaskStatus = "done"
	TaskBlocked TaskStatus = "blocked"
	TaskDelayed TaskStatus = "delayed"
)

// Valid reports whether s belongs to the task status enumeration.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskDoing, TaskDone, TaskBlocked, TaskDelayed:
		return true
	}
	return false
}

// DefaultPriority is assigned to plans and tasks created without one.
const DefaultPriority = "medium"

// Plan is a study plan. Status and Progress are derived from the plan's
// tasks whenever a task changes.
type Plan struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"-"`
	Title     string     `json:"title"`
	Goal      *string    `json:"goal"`
	Deadline  *Date      `json:"deadline"`
	Priority  string     `json:"priority"`
	Tags      StringList `json:"tags"`
	Status    PlanStatus `json:"status"`
	Progress  float64    `json:"progress"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PlanDetail is a plan together with its ordered tasks.
type PlanDetail struct {
	Plan
	Tasks []*Task `json:"tasks"`
}

// Task belongs to exactly one plan. UserID duplicates the plan owner so
// ownership checks need no join.
type Task struct {
	ID              uint64     `json:"id"`
	PlanID          uint64     `json:"plan_id"`
	UserID          uint64     `json:"-"`
	Title           string     `json:"title"`
	Desc            *string    `json:"desc"`
	EstimateMinutes *int       `json:"estimate_minutes"`
	Priority        string     `json:"priority"`
	Status          TaskStatus `json:"status"`
	DueDate         *Date      `json:"due_date"`
	Tags            StringList `json:"tags"`
	OrderNo         int        `json:"order_no"`
	FocusMinutes    int        `json:"focus_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
