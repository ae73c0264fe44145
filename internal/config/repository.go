package config

import (
	"context"
	"fmt"
	"os"

	"task-tracker/internal/repository"
	"task-tracker/internal/repository/postgres"
	"task-tracker/internal/repository/sqlite"
)

// RepositoryOptions derives the per-operation deadlines from the config.
func (c *Config) RepositoryOptions() repository.Options {
	return repository.Options{
		QueryTimeout: c.GetQueryTimeout(),
		WriteTimeout: c.GetWriteTimeout(),
	}
}

// CreateRepository opens the backend selected by Database.Driver. Opening
// applies any pending migrations.
func CreateRepository(ctx context.Context, config *Config) (repository.Repository, error) {
	switch config.Database.Driver {
	case DriverPostgres:
		repo, err := postgres.New(ctx, config.Database.DSN, config.RepositoryOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil

	case DriverSQLite, "":
		dbPath := config.GetDatabasePath()
		if dbPath != ":memory:" {
			if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		repo, err := sqlite.New(dbPath, config.RepositoryOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil

	default:
		return nil, &ConfigError{Field: "database.driver", Message: "unsupported driver " + config.Database.Driver}
	}
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (repository.Repository, error) {
	repo, err := sqlite.New(":memory:", repository.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}
