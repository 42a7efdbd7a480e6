package store

import (
	"encoding/json"
	"fmt"
	"os"

	"wondash/server/internal/models"
)

// Store persists the dashboard configuration. Load returns (nil, nil) when no
// configuration has ever been saved.
type Store interface {
	Load() (*models.DashboardConfig, error)
	Save(cfg *models.DashboardConfig) error
}

// FileStore keeps the configuration in a local JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*models.DashboardConfig, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg models.DashboardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

func (s *FileStore) Save(cfg *models.DashboardConfig) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
