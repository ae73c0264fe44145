package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
	apperrors "task-tracker/internal/errors"
	"task-tracker/internal/identity"
)

func TestUserCommands(t *testing.T) {
	app, out := setupTestApp(t)
	ctx := context.Background()

	require.NoError(t, (&UserListCommand{}).Execute(ctx, app, nil))
	assert.Equal(t, "No users found\n", out.String())
	out.Reset()

	require.NoError(t, (&UserAddCommand{}).Execute(ctx, app, []string{"alice"}))
	require.NoError(t, (&UserAddCommand{Admin: true}).Execute(ctx, app, []string{"root"}))
	assert.Contains(t, out.String(), "Created admin root")
	out.Reset()

	require.NoError(t, (&UserListCommand{}).Execute(ctx, app, nil))
	assert.Equal(t, "1 alice\n2 root (admin)\n", out.String())

	tests := []struct {
		name           string
		args           []string
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name: "duplicate username",
			args: []string{"alice"},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
			},
		},
		{
			name: "missing username",
			args: nil,
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&UserAddCommand{}).Execute(ctx, app, tt.args)
			require.Error(t, err)
			tt.errorAssertion(t, err)
		})
	}
}

func TestTaskCommands(t *testing.T) {
	app, out := setupTestApp(t)
	ctx := context.Background()
	require.NoError(t, (&UserAddCommand{}).Execute(ctx, app, []string{"alice"}))
	require.NoError(t, (&UserAddCommand{}).Execute(ctx, app, []string{"bob"}))
	out.Reset()

	t.Run("add and list", func(t *testing.T) {
		add := &TaskAddCommand{User: "alice", DueDate: "2025-06-14"}
		require.NoError(t, add.Execute(ctx, app, []string{"write report"}))
		assert.Contains(t, out.String(), "Created task: 1 [todo] write report")
		out.Reset()

		require.NoError(t, (&TaskListCommand{User: "alice"}).Execute(ctx, app, nil))
		assert.Contains(t, out.String(), "write report")
		assert.Contains(t, out.String(), "page 1, 1 of 1 tasks")
		out.Reset()
	})

	t.Run("other users see nothing", func(t *testing.T) {
		require.NoError(t, (&TaskListCommand{User: "bob"}).Execute(ctx, app, nil))
		assert.Equal(t, "No tasks found\n", out.String())
		out.Reset()

		err := (&TaskDeleteCommand{User: "bob"}).Execute(ctx, app, []string{"1"})
		assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
	})

	tests := []struct {
		name           string
		run            func() error
		errorAssertion func(t *testing.T, err error)
	}{
		{
			name: "done without due date",
			run: func() error {
				return (&TaskAddCommand{User: "alice", Status: "done"}).Execute(ctx, app, []string{"x"})
			},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
				assert.Contains(t, NewErrorHandler().HandleSimple(err).Error(), "due_date")
			},
		},
		{
			name: "unparseable due date",
			run: func() error {
				return (&TaskAddCommand{User: "alice", DueDate: "someday"}).Execute(ctx, app, []string{"x"})
			},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeValidation))
			},
		},
		{
			name: "unknown user",
			run: func() error {
				return (&TaskListCommand{User: "nobody"}).Execute(ctx, app, nil)
			},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeNotFound))
			},
		},
		{
			name: "bad filter",
			run: func() error {
				return (&TaskListCommand{User: "alice", DueFrom: "soon"}).Execute(ctx, app, nil)
			},
			errorAssertion: func(t *testing.T, err error) {
				assert.Contains(t, NewErrorHandler().HandleSimple(err).Error(), "due_date_from")
			},
		},
		{
			name: "non-numeric id",
			run: func() error {
				return (&TaskDeleteCommand{User: "alice"}).Execute(ctx, app, []string{"one"})
			},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeInvalidInput))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			tt.errorAssertion(t, err)
		})
	}

	t.Run("recalc flags the late task once", func(t *testing.T) {
		out.Reset()
		require.NoError(t, (&RecalcOverdueCommand{}).Execute(ctx, app, nil))
		assert.Equal(t, `{"updated":1}`+"\n", out.String())

		out.Reset()
		require.NoError(t, (&RecalcOverdueCommand{}).Execute(ctx, app, nil))
		assert.Equal(t, `{"updated":0}`+"\n", out.String())

		out.Reset()
		require.NoError(t, (&TaskListCommand{User: "alice"}).Execute(ctx, app, nil))
		assert.Contains(t, out.String(), "OVERDUE")
	})

	t.Run("delete", func(t *testing.T) {
		out.Reset()
		require.NoError(t, (&TaskDeleteCommand{User: "alice"}).Execute(ctx, app, []string{"1"}))
		assert.Equal(t, "Deleted task 1\n", out.String())
	})
}

func TestMigrateCommand(t *testing.T) {
	app, out := setupTestApp(t)
	require.NoError(t, (&MigrateCommand{}).Execute(context.Background(), app, nil))
	assert.Equal(t, "Database schema is up to date\n", out.String())
}

func TestApp_NewResolver(t *testing.T) {
	app, _ := setupTestApp(t)

	tests := []struct {
		mode     string
		expected any
		wantErr  bool
	}{
		{"", &identity.HeaderResolver{}, false},
		{config.IdentityModeHeader, &identity.HeaderResolver{}, false},
		{config.IdentityModeJWT, &identity.JWTResolver{}, false},
		{"ldap", nil, true},
	}

	for _, tt := range tests {
		t.Run("mode "+tt.mode, func(t *testing.T) {
			app.config.Identity.Mode = tt.mode
			resolver, err := app.newResolver()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expected, resolver)
		})
	}
}

func TestRootCommand(t *testing.T) {
	app, out := setupTestApp(t)

	run := func(args ...string) error {
		root := NewRootCommand(app)
		root.SetOutput(out)
		root.SetArgs(args)
		return root.Execute()
	}

	require.NoError(t, run("user", "add", "root", "--admin"))
	require.NoError(t, run("user", "add", "alice"))
	require.NoError(t, run("task", "add", "ship it", "--user", "alice", "--status", "done", "--due", "2025-06-01T00:00:00Z"))
	require.NoError(t, run("task", "add", "late", "--user", "alice", "--due", "2025-06-01"))

	out.Reset()
	require.NoError(t, run("task", "list", "--user", "alice", "--status", "done"))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))
	assert.Contains(t, out.String(), "ship it")

	out.Reset()
	require.NoError(t, run("recalc-overdue"))
	assert.Equal(t, `{"updated":1}`+"\n", out.String())

	assert.Error(t, run("task", "list"), "--user is required")
	assert.Error(t, run("task", "add"), "title argument is required")
}
