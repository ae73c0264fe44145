// Package repository defines the storage contract shared by the SQL
// backends. Every task lookup that a client can trigger is scoped by owner
// in the query itself, so a row owned by someone else is indistinguishable
// from a missing one.
package repository

import (
	"context"
	"time"
)

// TaskRow is the persisted form of a task.
type TaskRow struct {
	ID          int64
	Title       string
	Description string
	Status      string
	DueDate     *time.Time // NULL when no due date
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsOverdue   bool
}

// UserRow is the persisted form of a user.
type UserRow struct {
	ID        int64
	Username  string
	IsAdmin   bool
	CreatedAt time.Time
}

// TaskQuery selects an owner's tasks. Limit <= 0 means no limit.
type TaskQuery struct {
	OwnerID     int64
	Status      *string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Limit       int
	Offset      int
}

// TaskMutator edits a loaded row in place inside the update transaction.
// Returning an error aborts the update and rolls the transaction back.
type TaskMutator func(row *TaskRow) error

// Repository defines the interface for database operations
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *UserRow) error
	GetUser(ctx context.Context, id int64) (*UserRow, error)
	GetUserByUsername(ctx context.Context, username string) (*UserRow, error)
	ListUsers(ctx context.Context) ([]*UserRow, error)

	// Ownership-scoped task operations
	CreateTask(ctx context.Context, task *TaskRow) error
	GetTask(ctx context.Context, id, ownerID int64) (*TaskRow, error)
	ListTasks(ctx context.Context, q TaskQuery) ([]*TaskRow, error)
	CountTasks(ctx context.Context, q TaskQuery) (int64, error)
	UpdateTask(ctx context.Context, id, ownerID int64, mutate TaskMutator) (*TaskRow, error)
	DeleteTask(ctx context.Context, id, ownerID int64) error

	// RecalculateOverdue runs the overdue sweep in a single transaction and
	// returns how many tasks were newly flagged.
	RecalculateOverdue(ctx context.Context, now time.Time) (int64, error)

	// Utility
	Close() error
}

// Options tunes per-operation deadlines. Zero values disable the deadline.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// WithTimeout derives a context bounded by d when d is positive.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
