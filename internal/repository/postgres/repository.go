// Package postgres is the PostgreSQL storage backend, built on a pgx
// connection pool.
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"task-tracker/internal/errors"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/postgres/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, status, due_date, owner_id, created_at, updated_at, is_overdue`

const userColumns = `id, username, is_admin, created_at`

// uniqueViolation is the SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// PostgresRepository implements repository.Repository on PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
	opts repository.Options
}

var _ repository.Repository = (*PostgresRepository)(nil)

// New connects to the database at url, verifies the connection and applies
// pending migrations.
func New(ctx context.Context, url string, opts repository.Options) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}

	pingCtx, cancel := repository.WithTimeout(ctx, opts.QueryTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, handleError("ping database", err)
	}

	if _, err := migrations.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	return &PostgresRepository{pool: pool, opts: opts}, nil
}

// Close releases every pooled connection.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Pool exposes the underlying pool for tests and maintenance commands.
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

func handleError(operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(operation, err.Error())
	}
	return errors.NewDatabaseError(operation, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanTask(row pgx.Row) (*repository.TaskRow, error) {
	task := &repository.TaskRow{}
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.OwnerID,
		&task.CreatedAt,
		&task.UpdatedAt,
		&task.IsOverdue,
	)
	if err != nil {
		return nil, err
	}
	normalizeTask(task)
	return task, nil
}

// normalizeTask reports times in UTC regardless of the session time zone.
func normalizeTask(task *repository.TaskRow) {
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		task.DueDate = &due
	}
}

func scanUser(row pgx.Row) (*repository.UserRow, error) {
	user := &repository.UserRow{}
	if err := row.Scan(&user.ID, &user.Username, &user.IsAdmin, &user.CreatedAt); err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

func querySingle[T any](ctx context.Context, q querier, sql string, scan func(pgx.Row) (*T, error), entityType, id string, args ...any) (*T, error) {
	result, err := scan(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NewNotFoundError(entityType, id)
		}
		return nil, handleError("scan "+entityType, err)
	}
	return result, nil
}

func (r *PostgresRepository) queryMultiple(ctx context.Context, sql string, entityType string, args ...any) (pgx.Rows, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handleError("query "+entityType, err)
	}
	return rows, nil
}

// CreateUser inserts a user and fills in its ID.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *repository.UserRow) error {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, is_admin, created_at) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.IsAdmin, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.NewInvalidInputError("username", user.Username, "already exists")
		}
		return handleError("create user", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *PostgresRepository) GetUser(ctx context.Context, id int64) (*repository.UserRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	return querySingle(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE id = $1`, scanUser, "user", strconv.FormatInt(id, 10), id)
}

// GetUserByUsername retrieves a user by username
func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*repository.UserRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	return querySingle(ctx, r.pool, `SELECT `+userColumns+` FROM users WHERE username = $1`, scanUser, "user", username, username)
}

// ListUsers returns all users ordered by ID
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]*repository.UserRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	rows, err := r.queryMultiple(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`, "users")
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*repository.UserRow, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, handleError("scan users", err)
	}
	return users, nil
}

// CreateTask inserts a task and fills in its ID.
func (r *PostgresRepository) CreateTask(ctx context.Context, task *repository.TaskRow) error {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	err := r.pool.QueryRow(ctx, `
	INSERT INTO tasks (title, description, status, due_date, owner_id, created_at, updated_at, is_overdue)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`,
		task.Title, task.Description, task.Status, task.DueDate, task.OwnerID,
		task.CreatedAt, task.UpdatedAt, task.IsOverdue,
	).Scan(&task.ID)
	if err != nil {
		return handleError("create task", err)
	}
	return nil
}

// GetTask retrieves a task by ID if it belongs to ownerID.
func (r *PostgresRepository) GetTask(ctx context.Context, id, ownerID int64) (*repository.TaskRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	return getTask(ctx, r.pool, id, ownerID, false)
}

func getTask(ctx context.Context, q querier, id, ownerID int64, forUpdate bool) (*repository.TaskRow, error) {
	sql := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	return querySingle(ctx, q, sql, scanTask, "task", strconv.FormatInt(id, 10), id, ownerID)
}

// buildTaskWhere renders the owner and filter predicates with numbered
// placeholders starting at $1.
func buildTaskWhere(q repository.TaskQuery) (string, []any) {
	conditions := []string{"owner_id = $1"}
	args := []any{q.OwnerID}

	add := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}
	if q.Status != nil {
		add("status = $%d", *q.Status)
	}
	if q.DueDateFrom != nil {
		add("due_date >= $%d", *q.DueDateFrom)
	}
	if q.DueDateTo != nil {
		add("due_date <= $%d", *q.DueDateTo)
	}
	return strings.Join(conditions, " AND "), args
}

// ListTasks returns the owner's tasks matching q, newest first.
func (r *PostgresRepository) ListTasks(ctx context.Context, q repository.TaskQuery) ([]*repository.TaskRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	where, args := buildTaskWhere(q)
	sql := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + ` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		sql += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := r.queryMultiple(ctx, sql, "tasks", args...)
	if err != nil {
		return nil, err
	}
	tasks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*repository.TaskRow, error) {
		return scanTask(row)
	})
	if err != nil {
		return nil, handleError("scan tasks", err)
	}
	if tasks == nil {
		tasks = []*repository.TaskRow{}
	}
	return tasks, nil
}

// CountTasks counts the owner's tasks matching q, ignoring Limit and Offset.
func (r *PostgresRepository) CountTasks(ctx context.Context, q repository.TaskQuery) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.QueryTimeout)
	defer cancel()

	where, args := buildTaskWhere(q)
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+where, args...).Scan(&count); err != nil {
		return 0, handleError("count tasks", err)
	}
	return count, nil
}

// UpdateTask locks the owner's task, lets mutate edit it and writes the
// result back, all in one transaction.
func (r *PostgresRepository) UpdateTask(ctx context.Context, id, ownerID int64, mutate repository.TaskMutator) (*repository.TaskRow, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, handleError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	task, err := getTask(ctx, tx, id, ownerID, true)
	if err != nil {
		return nil, err
	}
	if err := mutate(task); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
	UPDATE tasks
	SET title = $1, description = $2, status = $3, due_date = $4, updated_at = $5, is_overdue = $6
	WHERE id = $7 AND owner_id = $8`,
		task.Title, task.Description, task.Status, task.DueDate, task.UpdatedAt, task.IsOverdue, id, ownerID,
	)
	if err != nil {
		return nil, handleError("update task", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, handleError("commit transaction", err)
	}
	normalizeTask(task)
	return task, nil
}

// DeleteTask deletes the owner's task.
func (r *PostgresRepository) DeleteTask(ctx context.Context, id, ownerID int64) error {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return handleError("delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return errors.NewNotFoundError("task", strconv.FormatInt(id, 10))
	}
	return nil
}

// RecalculateOverdue flags open tasks whose due date has passed and clears
// the flag on everything else, returning how many were newly flagged.
// updated_at is left alone.
func (r *PostgresRepository) RecalculateOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := repository.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, handleError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	marked, err := tx.Exec(ctx, `
	UPDATE tasks SET is_overdue = TRUE
	WHERE NOT is_overdue AND status <> 'done' AND due_date IS NOT NULL AND due_date < $1`, now)
	if err != nil {
		return 0, handleError("mark overdue tasks", err)
	}

	if _, err := tx.Exec(ctx, `
	UPDATE tasks SET is_overdue = FALSE
	WHERE is_overdue AND (status = 'done' OR due_date IS NULL OR due_date >= $1)`, now); err != nil {
		return 0, handleError("clear overdue tasks", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, handleError("commit transaction", err)
	}
	return marked.RowsAffected(), nil
}
