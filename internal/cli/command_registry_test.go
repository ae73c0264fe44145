package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
	apperrors "task-tracker/internal/errors"
)

// setupTestApp returns an App on an in-memory database with output captured.
func setupTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	repo, err := config.CreateTestRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	original := timeNow
	timeNow = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { timeNow = original })

	app := NewApp(repo, config.NewConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	out := &bytes.Buffer{}
	app.SetOutput(out)
	return app, out
}

func TestNewCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	assert.Equal(t, []string{
		"migrate",
		"recalc-overdue",
		"serve",
		"task add",
		"task delete",
		"task list",
		"user add",
		"user list",
	}, registry.Names())

	command, ok := registry.Get("task list")
	require.True(t, ok)
	assert.IsType(t, &TaskListCommand{}, command)
}

func TestCommandRegistry_Execute(t *testing.T) {
	app, out := setupTestApp(t)
	registry := NewCommandRegistry()
	ctx := context.Background()

	t.Run("executes registered command", func(t *testing.T) {
		err := registry.Execute(ctx, app, "user add", []string{"alice"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Created user alice")
	})

	t.Run("unknown command", func(t *testing.T) {
		err := registry.Execute(ctx, app, "bogus", nil)
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
	})
}
