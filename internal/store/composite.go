package store

import (
	"sync"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// CompositeStore writes to a local store and mirrors to a remote one. The
// local store is the source of truth: a mirror failure is logged, never
// surfaced. Loads prefer local and fall back to the mirror (fresh machine,
// existing gist). Writes are serialized by a single mutex; the expected
// deployment is one session, so contention is not a concern.
type CompositeStore struct {
	mu     sync.Mutex
	local  Store
	remote Store
	logger *logrus.Logger
}

func NewCompositeStore(local, remote Store, logger *logrus.Logger) *CompositeStore {
	return &CompositeStore{local: local, remote: remote, logger: logger}
}

func (s *CompositeStore) Load() (*models.DashboardConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.local.Load()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load local config")
	}
	if cfg != nil {
		return cfg, nil
	}

	remoteCfg, remoteErr := s.remote.Load()
	if remoteErr != nil {
		s.logger.WithError(remoteErr).Warn("Failed to load mirrored config")
		return nil, err
	}
	return remoteCfg, nil
}

func (s *CompositeStore) Save(cfg *models.DashboardConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.local.Save(cfg)

	if mirrorErr := s.remote.Save(cfg); mirrorErr != nil {
		s.logger.WithError(mirrorErr).Warn("Failed to mirror config to remote store")
	}

	return err
}
