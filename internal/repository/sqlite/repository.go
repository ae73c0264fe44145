package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// dsnPragmas turns on foreign keys (owner cascade) and waits on a locked
// database instead of failing immediately.
const dsnPragmas = "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts repository.Options
}

var _ repository.Repository = (*SQLiteRepository)(nil)

// New opens (or creates) the database at dbPath and applies pending migrations.
// ":memory:" gives a private in-memory database.
func New(dbPath string, opts repository.Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", buildDSN(dbPath))
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := repository.WithTimeout(context.Background(), opts.WriteTimeout)
	defer cancel()
	if _, err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

func buildDSN(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + dsnPragmas
	}
	return dbPath + "?" + dsnPragmas
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// DB exposes the underlying handle for tests and maintenance commands.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// CreateUser inserts a user and fills in its ID.
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *repository.UserRow) error {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	query := `INSERT INTO users (username, is_admin, created_at) VALUES (?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, user.Username, user.IsAdmin, FormatTimeForDB(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewInvalidInputError("username", user.Username, "already exists")
		}
		return err
	}
	user.ID = id
	return nil
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*repository.UserRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", strconv.FormatInt(id, 10), id)
}

// GetUserByUsername retrieves a user by username
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*repository.UserRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return QuerySingle(ctx, r.db, query, ScanUser, "user", username, username)
}

// ListUsers returns all users ordered by ID
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]*repository.UserRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return QueryMultiple(ctx, r.db, query, ScanUsers, "users")
}

// CreateTask inserts a task and fills in its ID.
func (r *SQLiteRepository) CreateTask(ctx context.Context, task *repository.TaskRow) error {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	query := `
	INSERT INTO tasks (title, description, status, due_date, owner_id, created_at, updated_at, is_overdue)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query,
		task.Title,
		task.Description,
		task.Status,
		FormatTimePtrForDB(task.DueDate),
		task.OwnerID,
		FormatTimeForDB(task.CreatedAt),
		FormatTimeForDB(task.UpdatedAt),
		task.IsOverdue,
	)
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// GetTask retrieves a task by ID if it belongs to ownerID.
func (r *SQLiteRepository) GetTask(ctx context.Context, id, ownerID int64) (*repository.TaskRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	return getTask(ctx, r.db, id, ownerID)
}

func getTask(ctx context.Context, db execer, id, ownerID int64) (*repository.TaskRow, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND owner_id = ?`
	return QuerySingle(ctx, db, query, ScanTask, "task", strconv.FormatInt(id, 10), id, ownerID)
}

// ListTasks returns the owner's tasks matching q, newest first.
func (r *SQLiteRepository) ListTasks(ctx context.Context, q repository.TaskQuery) ([]*repository.TaskRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	where, args := buildTaskWhere(q)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}

	tasks, err := QueryMultiple(ctx, r.db, query, ScanTasks, "tasks", args...)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*repository.TaskRow{}
	}
	return tasks, nil
}

// CountTasks counts the owner's tasks matching q, ignoring Limit and Offset.
func (r *SQLiteRepository) CountTasks(ctx context.Context, q repository.TaskQuery) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	where, args := buildTaskWhere(q)
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&count); err != nil {
		return 0, HandleDatabaseError("count tasks", err)
	}
	return count, nil
}

func buildTaskWhere(q repository.TaskQuery) (string, []interface{}) {
	conditions := []string{"owner_id = ?"}
	args := []interface{}{q.OwnerID}

	if q.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *q.Status)
	}
	if q.DueDateFrom != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, FormatTimeForDB(*q.DueDateFrom))
	}
	if q.DueDateTo != nil {
		conditions = append(conditions, "due_date <= ?")
		args = append(args, FormatTimeForDB(*q.DueDateTo))
	}

	return strings.Join(conditions, " AND "), args
}

// UpdateTask loads the owner's task, lets mutate edit it and writes the
// result back, all in one transaction.
func (r *SQLiteRepository) UpdateTask(ctx context.Context, id, ownerID int64, mutate repository.TaskMutator) (*repository.TaskRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, HandleDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	task, err := getTask(ctx, tx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := mutate(task); err != nil {
		return nil, err
	}

	query := `
	UPDATE tasks
	SET title = ?, description = ?, status = ?, due_date = ?, updated_at = ?, is_overdue = ?
	WHERE id = ? AND owner_id = ?`
	err = ExecuteWithRowsAffected(ctx, tx, query, "task", strconv.FormatInt(id, 10),
		task.Title,
		task.Description,
		task.Status,
		FormatTimePtrForDB(task.DueDate),
		FormatTimeForDB(task.UpdatedAt),
		task.IsOverdue,
		id,
		ownerID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, HandleDatabaseError("commit transaction", err)
	}
	return task, nil
}

// DeleteTask deletes the owner's task.
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	query := `DELETE FROM tasks WHERE id = ? AND owner_id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "task", strconv.FormatInt(id, 10), id, ownerID)
}

// RecalculateOverdue flags open tasks whose due date has passed and clears
// the flag on everything else. Only newly flagged rows are counted, so a
// repeat run with the same clock reports zero. updated_at is left alone.
func (r *SQLiteRepository) RecalculateOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, HandleDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	cutoff := FormatTimeForDB(now)

	result, err := tx.ExecContext(ctx, `
	UPDATE tasks SET is_overdue = 1
	WHERE is_overdue = 0 AND status <> 'done' AND due_date IS NOT NULL AND due_date < ?`, cutoff)
	if err != nil {
		return 0, HandleDatabaseError("mark overdue tasks", err)
	}
	marked, err := result.RowsAffected()
	if err != nil {
		return 0, HandleDatabaseError("get rows affected", err)
	}

	if _, err := tx.ExecContext(ctx, `
	UPDATE tasks SET is_overdue = 0
	WHERE is_overdue = 1 AND (status = 'done' OR due_date IS NULL OR due_date >= ?)`, cutoff); err != nil {
		return 0, HandleDatabaseError("clear overdue tasks", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, HandleDatabaseError("commit transaction", err)
	}
	return marked, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(fmt.Sprint(err), "UNIQUE constraint failed")
}
