package domain

import (
	"task-tracker/internal/repository"
)

// TaskMapper handles conversion between domain and repository task rows.
type TaskMapper struct{}

// NewTaskMapper creates a new TaskMapper instance.
func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

// ToRow converts a domain Task to a repository row.
func (m *TaskMapper) ToRow(t Task) *repository.TaskRow {
	return &repository.TaskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		IsOverdue:   t.IsOverdue,
	}
}

// FromRow converts a repository row to a domain Task.
func (m *TaskMapper) FromRow(row *repository.TaskRow) *Task {
	return &Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Status:      Status(row.Status),
		DueDate:     row.DueDate,
		OwnerID:     row.OwnerID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		IsOverdue:   row.IsOverdue,
	}
}

// FromRows converts a slice of repository rows to domain Tasks.
func (m *TaskMapper) FromRows(rows []*repository.TaskRow) []*Task {
	tasks := make([]*Task, len(rows))
	for i, row := range rows {
		tasks[i] = m.FromRow(row)
	}
	return tasks
}

// CopyInto overwrites row with the fields of t, keeping row's identity.
func (m *TaskMapper) CopyInto(t Task, row *repository.TaskRow) {
	id, owner := row.ID, row.OwnerID
	*row = *m.ToRow(t)
	row.ID, row.OwnerID = id, owner
}

// UserMapper handles conversion between domain and repository user rows.
type UserMapper struct{}

// NewUserMapper creates a new UserMapper instance.
func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

// ToRow converts a domain User to a repository row.
func (m *UserMapper) ToRow(u User) *repository.UserRow {
	return &repository.UserRow{
		ID:        u.ID,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// FromRow converts a repository row to a domain User.
func (m *UserMapper) FromRow(row *repository.UserRow) User {
	return User{
		ID:        row.ID,
		Username:  row.Username,
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
	}
}

// FromRows converts a slice of repository rows to domain Users.
func (m *UserMapper) FromRows(rows []*repository.UserRow) []User {
	users := make([]User, len(rows))
	for i, row := range rows {
		users[i] = m.FromRow(row)
	}
	return users
}
