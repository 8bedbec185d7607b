package database

import (
	"fmt"
	"os"

	"videoflow/internal/config"
)

// NewDatabaseFromConfig opens the database described by the config.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("%w: creating data directory: %v", ErrStorageUnavailable, err)
		}
		return New(cfg.FilePath(), cfg.BusyTimeoutMS)
	case "memory":
		return New(":memory:", cfg.BusyTimeoutMS)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
