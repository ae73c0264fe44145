package sqlite

import (
	"context"
	"testing"
	"time"

	"task-tracker/internal/errors"
	"task-tracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(":memory:", repository.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createUser(t *testing.T, repo *SQLiteRepository, username string, admin bool) *repository.UserRow {
	t.Helper()
	user := &repository.UserRow{Username: username, IsAdmin: admin}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func createTask(t *testing.T, repo *SQLiteRepository, ownerID int64, title string, created time.Time, mods ...func(*repository.TaskRow)) *repository.TaskRow {
	t.Helper()
	task := &repository.TaskRow{
		Title:     title,
		Status:    "todo",
		OwnerID:   ownerID,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, mod := range mods {
		mod(task)
	}
	require.NoError(t, repo.CreateTask(context.Background(), task))
	return task
}

func timePtr(t time.Time) *time.Time { return &t }

func TestSQLiteRepository_Users(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	alice := createUser(t, repo, "alice", false)
	root := createUser(t, repo, "root", true)
	assert.NotZero(t, alice.ID)

	got, err := repo.GetUser(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", got.Username)
	assert.True(t, got.IsAdmin)

	got, err = repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
	assert.False(t, got.IsAdmin)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)

	_, err = repo.GetUser(ctx, 999)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	err = repo.CreateUser(ctx, &repository.UserRow{Username: "alice"})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestSQLiteRepository_TaskOwnershipScoping(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	alice := createUser(t, repo, "alice", false)
	bob := createUser(t, repo, "bob", false)
	task := createTask(t, repo, alice.ID, "write report", now)

	got, err := repo.GetTask(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.Equal(t, now, got.CreatedAt)
	assert.Nil(t, got.DueDate)

	tests := []struct {
		name string
		run  func() error
	}{
		{"get", func() error { _, err := repo.GetTask(ctx, task.ID, bob.ID); return err }},
		{"update", func() error {
			_, err := repo.UpdateTask(ctx, task.ID, bob.ID, func(row *repository.TaskRow) error {
				row.Title = "stolen"
				return nil
			})
			return err
		}},
		{"delete", func() error { return repo.DeleteTask(ctx, task.ID, bob.ID) }},
		{"missing", func() error { _, err := repo.GetTask(ctx, task.ID+100, alice.ID); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound), "got %v", err)
		})
	}

	got, err = repo.GetTask(ctx, task.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
}

func TestSQLiteRepository_ListTasksFiltersAndOrdering(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	alice := createUser(t, repo, "alice", false)
	bob := createUser(t, repo, "bob", false)

	first := createTask(t, repo, alice.ID, "first", base, func(r *repository.TaskRow) {
		r.DueDate = timePtr(base.AddDate(0, 0, 5))
	})
	second := createTask(t, repo, alice.ID, "second", base.Add(time.Hour), func(r *repository.TaskRow) {
		r.Status = "in_progress"
		r.DueDate = timePtr(base.AddDate(0, 0, 10))
	})
	third := createTask(t, repo, alice.ID, "third", base.Add(time.Hour))
	createTask(t, repo, bob.ID, "bobs", base.Add(2*time.Hour))

	status := "in_progress"
	unknown := "archived"

	tests := []struct {
		name     string
		query    repository.TaskQuery
		expected []int64
	}{
		{"all of owner newest first, id breaks ties", repository.TaskQuery{OwnerID: alice.ID}, []int64{third.ID, second.ID, first.ID}},
		{"status", repository.TaskQuery{OwnerID: alice.ID, Status: &status}, []int64{second.ID}},
		{"unknown status matches nothing", repository.TaskQuery{OwnerID: alice.ID, Status: &unknown}, []int64{}},
		{"due from is inclusive", repository.TaskQuery{OwnerID: alice.ID, DueDateFrom: timePtr(base.AddDate(0, 0, 10))}, []int64{second.ID}},
		{"due to is inclusive", repository.TaskQuery{OwnerID: alice.ID, DueDateTo: timePtr(base.AddDate(0, 0, 5))}, []int64{first.ID}},
		{"limit and offset", repository.TaskQuery{OwnerID: alice.ID, Limit: 1, Offset: 1}, []int64{second.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.ListTasks(ctx, tt.query)
			require.NoError(t, err)
			ids := make([]int64, 0, len(tasks))
			for _, task := range tasks {
				ids = append(ids, task.ID)
			}
			assert.Equal(t, tt.expected, ids)

			if tt.query.Limit == 0 {
				count, err := repo.CountTasks(ctx, tt.query)
				require.NoError(t, err)
				assert.Equal(t, int64(len(tt.expected)), count)
			}
		})
	}
}

func TestSQLiteRepository_UpdateTask(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	alice := createUser(t, repo, "alice", false)
	task := createTask(t, repo, alice.ID, "draft", now)

	t.Run("applies mutation", func(t *testing.T) {
		due := now.AddDate(0, 0, 1)
		updated, err := repo.UpdateTask(ctx, task.ID, alice.ID, func(row *repository.TaskRow) error {
			row.Title = "final"
			row.DueDate = &due
			row.UpdatedAt = now.Add(time.Minute)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "final", updated.Title)

		got, err := repo.GetTask(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Title)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))
		assert.Equal(t, now.Add(time.Minute), got.UpdatedAt)
	})

	t.Run("mutator error rolls back", func(t *testing.T) {
		_, err := repo.UpdateTask(ctx, task.ID, alice.ID, func(row *repository.TaskRow) error {
			row.Title = "discarded"
			return errors.NewValidationError("nope", nil)
		})
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

		got, err := repo.GetTask(ctx, task.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "final", got.Title)
	})
}

func TestSQLiteRepository_DeleteTask(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice", false)
	task := createTask(t, repo, alice.ID, "temp", time.Now())

	require.NoError(t, repo.DeleteTask(ctx, task.ID, alice.ID))
	_, err := repo.GetTask(ctx, task.ID, alice.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	err = repo.DeleteTask(ctx, task.ID, alice.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestSQLiteRepository_RecalculateOverdue(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	alice := createUser(t, repo, "alice", false)
	bob := createUser(t, repo, "bob", false)

	late := createTask(t, repo, alice.ID, "late", now, func(r *repository.TaskRow) {
		r.DueDate = timePtr(now.Add(-time.Hour))
	})
	lateOther := createTask(t, repo, bob.ID, "late too", now, func(r *repository.TaskRow) {
		r.Status = "in_progress"
		r.DueDate = timePtr(now.Add(-24 * time.Hour))
	})
	doneLate := createTask(t, repo, alice.ID, "done late", now, func(r *repository.TaskRow) {
		r.Status = "done"
		r.DueDate = timePtr(now.Add(-time.Hour))
		r.IsOverdue = true
	})
	future := createTask(t, repo, alice.ID, "future", now, func(r *repository.TaskRow) {
		r.DueDate = timePtr(now.Add(time.Hour))
		r.IsOverdue = true
	})
	noDue := createTask(t, repo, alice.ID, "no due", now, func(r *repository.TaskRow) {
		r.IsOverdue = true
	})

	updated, err := repo.RecalculateOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	expect := map[int64]bool{
		late.ID:      true,
		doneLate.ID:  false,
		future.ID:    false,
		noDue.ID:     false,
		lateOther.ID: true,
	}
	owners := map[int64]int64{lateOther.ID: bob.ID}
	for id, want := range expect {
		owner := alice.ID
		if o, ok := owners[id]; ok {
			owner = o
		}
		got, err := repo.GetTask(ctx, id, owner)
		require.NoError(t, err)
		assert.Equal(t, want, got.IsOverdue, "task %d", id)
		assert.Equal(t, now, got.UpdatedAt, "sweep must not touch updated_at")
	}

	updated, err = repo.RecalculateOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestSQLiteRepository_DeletingUserCascadesToTasks(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	alice := createUser(t, repo, "alice", false)
	task := createTask(t, repo, alice.ID, "orphan", time.Now())

	_, err := repo.DB().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, alice.ID)
	require.NoError(t, err)

	var count int
	require.NoError(t, repo.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE id = ?`, task.ID).Scan(&count))
	assert.Zero(t, count)
}

func TestBuildDSN(t *testing.T) {
	assert.Equal(t, "tasks.db?"+dsnPragmas, buildDSN("tasks.db"))
	assert.Equal(t, "file:x?mode=ro&"+dsnPragmas, buildDSN("file:x?mode=ro"))
}
