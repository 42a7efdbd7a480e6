package dashboard

import (
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/favorites"
	"wondash/server/internal/models"
	"wondash/server/internal/store"
)

// State owns the live dashboard configuration for a session: favorites,
// selections, display order and the per-region cache invalidation tokens.
// Every mutation reconciles the display order and persists through the store.
// Persistence failure is logged and swallowed; the user's action still
// applies for the running session.
type State struct {
	mu        sync.Mutex
	logger    *logrus.Logger
	store     store.Store
	cfg       *models.DashboardConfig
	favorites *favorites.Directory
	tokens    map[string]string
}

// NewState loads the persisted configuration (falling back to defaults) and
// migrates any favorites that predate stable ids.
func NewState(st store.Store, logger *logrus.Logger) *State {
	cfg, err := st.Load()
	if err != nil {
		logger.WithError(err).Error("Failed to load dashboard config, using defaults")
	}
	if cfg == nil {
		cfg = models.DefaultDashboardConfig()
	}

	dir, migrated := favorites.NewDirectory(cfg.FavoriteApts)
	cfg.FavoriteApts = dir.List()
	cfg.DashboardOrder = ReconcileOrder(CurrentKeys(cfg), cfg.DashboardOrder)

	s := &State{
		logger:    logger,
		store:     st,
		cfg:       cfg,
		favorites: dir,
		tokens:    make(map[string]string),
	}

	if migrated {
		s.persist()
	}
	return s
}

// Config returns a snapshot of the current configuration.
func (s *State) Config() *models.DashboardConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Clone()
}

// AddFavorite pins a new apartment complex. Duplicate (region, complex)
// pairs are rejected with favorites.ErrDuplicateFavorite.
func (s *State) AddFavorite(lawdCd, regionName, aptName string) (models.FavoriteAsset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.favorites.Add(lawdCd, regionName, aptName)
	if err != nil {
		return models.FavoriteAsset{}, err
	}
	s.syncAndPersist()
	return entry, nil
}

// RemoveFavorite deletes a favorite by its stable id.
func (s *State) RemoveFavorite(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.favorites.RemoveByID(id); err != nil {
		return err
	}
	s.syncAndPersist()
	return nil
}

// RemoveFavoriteAt deletes by visible list index, resolved to an id at this
// boundary.
func (s *State) RemoveFavoriteAt(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.favorites.RemoveAt(index); err != nil {
		return err
	}
	s.syncAndPersist()
	return nil
}

// SetSelections replaces the coin/stock selections.
func (s *State) SetSelections(coins, stocks []string, customStock string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.SelectedCoins = append([]string(nil), coins...)
	s.cfg.SelectedStocks = append([]string(nil), stocks...)
	s.cfg.CustomStock = customStock
	s.syncAndPersist()
}

// SetAIModel records the preferred report model.
func (s *State) SetAIModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.SelectedAIModel = model
	s.syncAndPersist()
}

// SetOrder applies a user reordering. The submitted order is reconciled
// against the live keys so a stale client can never corrupt the sequence.
func (s *State) SetOrder(order []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.DashboardOrder = ReconcileOrder(CurrentKeys(s.cfg), order)
	s.persist()
	return append([]string(nil), s.cfg.DashboardOrder...)
}

// FavoriteRegions returns the distinct region codes of the current favorites,
// in first-seen order.
func (s *State) FavoriteRegions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var regions []string
	for _, fav := range s.cfg.FavoriteApts {
		if !seen[fav.LawdCd] {
			seen[fav.LawdCd] = true
			regions = append(regions, fav.LawdCd)
		}
	}
	return regions
}

// Token returns the current invalidation token for a region. Regions start
// on the zero token and move to a fresh one on explicit refresh.
func (s *State) Token(lawdCd string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tok, ok := s.tokens[lawdCd]; ok {
		return tok
	}
	return "0"
}

// Refresh bumps the invalidation token for one region, forcing every month
// under it to be fetched fresh on next access. Other regions are unaffected.
func (s *State) Refresh(lawdCd string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := strconv.FormatInt(time.Now().UnixNano(), 10)
	s.tokens[lawdCd] = tok
	s.logger.WithFields(logrus.Fields{
		"lawd_cd": lawdCd,
		"token":   tok,
	}).Info("Bumped region cache token")
	return tok
}

// syncAndPersist refreshes the config's favorite list and order from the
// directory, then persists. Callers must hold s.mu.
func (s *State) syncAndPersist() {
	s.cfg.FavoriteApts = s.favorites.List()
	s.cfg.DashboardOrder = ReconcileOrder(CurrentKeys(s.cfg), s.cfg.DashboardOrder)
	s.persist()
}

func (s *State) persist() {
	if err := s.store.Save(s.cfg); err != nil {
		s.logger.WithError(err).Error("Failed to persist dashboard config")
	}
}
