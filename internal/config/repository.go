package config

import (
	"fmt"

	"task-manager/internal/repository/gormdb"
	"task-manager/internal/repository/sqlite"
	"task-manager/internal/store"
)

// CreateBackend opens the storage backend selected by the database driver
func CreateBackend(config *Config) (store.Backend, error) {
	if err := config.EnsureDatabaseDir(); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	switch config.Database.Driver {
	case DriverSQLite:
		repo, err := sqlite.NewWithOptions(config.GetDatabasePath(), sqlite.Options{
			QueryTimeout: config.Database.QueryTimeout,
			WriteTimeout: config.Database.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store.NewSQLiteBackend(repo), nil

	case DriverGormSQLite:
		backend, err := gormdb.OpenSQLite(config.GetDatabasePath(), gormOptions(config))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return backend, nil

	case DriverPostgres:
		backend, err := gormdb.OpenPostgres(config.Database.DSN, gormOptions(config))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return backend, nil

	default:
		return nil, &ConfigError{Field: "database.driver", Message: "unsupported driver " + config.Database.Driver}
	}
}

func gormOptions(config *Config) gormdb.Options {
	return gormdb.Options{
		QueryTimeout: config.Database.QueryTimeout,
		WriteTimeout: config.Database.WriteTimeout,
	}
}

// CreateTestBackend creates an in-memory SQLite backend for testing
func CreateTestBackend() (store.Backend, error) {
	repo, err := sqlite.New(MemoryDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return store.NewSQLiteBackend(repo), nil
}
