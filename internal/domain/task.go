package domain

import (
	"time"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Task represents a task in the domain model.
// This is a pure domain model without database-specific concerns.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	DueDate     *time.Time
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsOverdue   bool
}

// NewTask creates a todo task owned by ownerID.
func NewTask(ownerID int64, title string) Task {
	return Task{
		Title:   title,
		Status:  StatusTodo,
		OwnerID: ownerID,
	}
}

// IsDone reports whether the task is completed.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// ShouldBeOverdue reports the overdue state a sweep at now would assign.
func (t Task) ShouldBeOverdue(now time.Time) bool {
	return !t.IsDone() && t.DueDate != nil && t.DueDate.Before(now)
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}
