package sqlite

import (
	"database/sql"

	"task-tracker/internal/repository"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

const taskColumns = `id, title, description, status, due_date, owner_id, created_at, updated_at, is_overdue`

const userColumns = `id, username, is_admin, created_at`

// ScanTask scans a single task from a database row
func ScanTask(scanner Scanner) (*repository.TaskRow, error) {
	task := &repository.TaskRow{}
	var (
		dueDate   sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&dueDate,
		&task.OwnerID,
		&createdAt,
		&updatedAt,
		&task.IsOverdue,
	)
	if err != nil {
		return nil, err
	}

	if dueDate.Valid {
		due, err := ParseTimeFromDB(dueDate.String)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}
	if task.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

// ScanTasks scans multiple tasks from database rows
func ScanTasks(rows Rows) ([]*repository.TaskRow, error) {
	var tasks []*repository.TaskRow
	for rows.Next() {
		task, err := ScanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// ScanUser scans a single user from a database row
func ScanUser(scanner Scanner) (*repository.UserRow, error) {
	user := &repository.UserRow{}
	var createdAt string
	if err := scanner.Scan(&user.ID, &user.Username, &user.IsAdmin, &createdAt); err != nil {
		return nil, err
	}
	created, err := ParseTimeFromDB(createdAt)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = created
	return user, nil
}

// ScanUsers scans multiple users from database rows
func ScanUsers(rows Rows) ([]*repository.UserRow, error) {
	var users []*repository.UserRow
	for rows.Next() {
		user, err := ScanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
