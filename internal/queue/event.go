// Package queue defines the activity events exchanged over the message
// broker together with their publisher and consumer.
package queue

import "time"

// ActivityQueue is the durable queue every activity event is routed to.
const ActivityQueue = "activity.events"

// Event types.
const (
	EventTaskCompleted   = "task.completed"
	EventPlanCompleted   = "plan.completed"
	EventStudyLogCreated = "study_log.created"
)

// Event is published after a transaction commits. It carries enough
// information for downstream consumers to log or notify without querying
// the primary database. Unused ids are omitted.
type Event struct {
	Type       string  `json:"type"`
	UserID     uint64  `json:"user_id"`
	PlanID     uint64  `json:"plan_id,omitempty"`
	TaskID     uint64  `json:"task_id,omitempty"`
	EntryID    uint64  `json:"entry_id,omitempty"`
	LogID      uint64  `json:"log_id,omitempty"`
	Title      string  `json:"title,omitempty"`
	Progress   float64 `json:"progress,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}

// NewEvent stamps an event of the given type with the current UTC time.
func NewEvent(typ string, userID uint64) Event {
	return Event{Type: typ, UserID: userID, OccurredAt: time.Now().UTC().Format(time.RFC3339)}
}
