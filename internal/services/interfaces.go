package services

import (
	"context"
	"time"

	"task-tracker/internal/domain"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

// TaskService is ownership-scoped CRUD over tasks. Every operation runs as
// the given principal and only ever sees that principal's tasks.
type TaskService interface {
	// ListTasks returns one page of the principal's tasks, newest first.
	// Anonymous principals get an empty page.
	ListTasks(ctx context.Context, p domain.Principal, filter domain.TaskFilter, page domain.PageRequest) (*domain.TaskPage, error)
	GetTask(ctx context.Context, p domain.Principal, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, p domain.Principal, in domain.TaskInput) (*domain.Task, error)
	// UpdateTask merges in over the stored task. A full update (partial
	// false) requires a title.
	UpdateTask(ctx context.Context, p domain.Principal, id int64, in domain.TaskInput, partial bool) (*domain.Task, error)
	DeleteTask(ctx context.Context, p domain.Principal, id int64) error
}

// OverdueService maintains the is_overdue flag across all tasks.
type OverdueService interface {
	// Recalculate runs the sweep for an admin principal and returns how
	// many tasks were newly flagged.
	Recalculate(ctx context.Context, p domain.Principal) (int64, error)
	// Sweep runs the sweep with operator privileges, for the CLI.
	Sweep(ctx context.Context) (int64, error)
}

// UserService provisions the users tasks belong to.
type UserService interface {
	CreateUser(ctx context.Context, username string, admin bool) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	// Lookup satisfies identity.UserLookup.
	Lookup(ctx context.Context, id int64) (domain.User, error)
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	TaskService    TaskService
	OverdueService OverdueService
	UserService    UserService
}
