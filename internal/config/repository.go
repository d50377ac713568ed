package config

import (
	"fmt"
	"os"

	"sticky-wall/internal/repository"
	"sticky-wall/internal/repository/filestore"
	"sticky-wall/internal/repository/sqlite"
)

// CreateRepository opens the storage backend selected by the configuration
func CreateRepository(config *Config) (repository.Repository, error) {
	if err := os.MkdirAll(config.Storage.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	path := config.GetStoragePath()

	switch config.Storage.Backend {
	case BackendFile:
		repo, err := filestore.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open store file: %w", err)
		}
		return repo, nil
	case BackendSQLite:
		repo, err := sqlite.NewWithOptions(path, sqlite.Options{BusyTimeout: config.Application.Timeout})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
}

// CreateTestRepository creates an in-memory repository for testing
func CreateTestRepository() (repository.Repository, error) {
	repo, err := sqlite.New(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}
