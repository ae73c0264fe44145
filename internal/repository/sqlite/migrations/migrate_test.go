package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadMigrations_Ordered(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create_users", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, "create_tasks", migrations[1].Name)
	for _, m := range migrations {
		assert.NotEmpty(t, m.Up)
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	ran, err := RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ran)

	ran, err = RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, ran)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestTasksTable_RejectsDoneWithoutDueDate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := RunMigrations(ctx, db)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (username, is_admin, created_at) VALUES ('alice', 0, '2025-01-01T00:00:00.000000000Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO tasks (title, status, owner_id, created_at, updated_at)
		VALUES ('ship it', 'done', 1, '2025-01-01T00:00:00.000000000Z', '2025-01-01T00:00:00.000000000Z')`)
	assert.Error(t, err, "the table constraint backs up the service-level rule")
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		filename string
		version  int
		name     string
	}{
		{"000001_create_users.up.sql", 1, "create_users"},
		{"000012_add_index.up.sql", 12, "add_index"},
		{"readme.up.sql", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name := parseFilename(tt.filename)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.name, name)
		})
	}
}
