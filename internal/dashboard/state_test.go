package dashboard

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wondash/server/internal/favorites"
	"wondash/server/internal/models"
)

type memStore struct {
	cfg   *models.DashboardConfig
	saves int
}

func (m *memStore) Load() (*models.DashboardConfig, error) { return m.cfg, nil }
func (m *memStore) Save(cfg *models.DashboardConfig) error {
	m.cfg = cfg.Clone()
	m.saves++
	return nil
}

func TestNewState_DefaultsWhenUnsaved(t *testing.T) {
	s := NewState(&memStore{}, logrus.New())
	cfg := s.Config()

	assert.Equal(t, []string{"KRW-BTC", "KRW-ETH", "KRW-XRP"}, cfg.SelectedCoins)
	assert.Contains(t, cfg.DashboardOrder, "coin:KRW-BTC")
	assert.Contains(t, cfg.DashboardOrder, FxKey)
}

func TestNewState_MigratesFavoriteIDsAndPersists(t *testing.T) {
	st := &memStore{cfg: &models.DashboardConfig{
		FavoriteApts: []models.FavoriteAsset{{LawdCd: "11680", AptName: "은마"}},
	}}

	s := NewState(st, logrus.New())

	cfg := s.Config()
	require.Len(t, cfg.FavoriteApts, 1)
	assert.NotEmpty(t, cfg.FavoriteApts[0].ID)
	assert.Equal(t, 1, st.saves)
	assert.NotEmpty(t, st.cfg.FavoriteApts[0].ID)
}

func TestState_AddFavoritePersistsAndOrders(t *testing.T) {
	st := &memStore{}
	s := NewState(st, logrus.New())

	fav, err := s.AddFavorite("11680", "강남구", "은마")
	require.NoError(t, err)

	cfg := s.Config()
	assert.Equal(t, []models.FavoriteAsset{fav}, cfg.FavoriteApts)
	// New keys append at the end of the existing order
	assert.Equal(t, AptKey(fav.ID), cfg.DashboardOrder[len(cfg.DashboardOrder)-1])
	assert.Equal(t, cfg.DashboardOrder, st.cfg.DashboardOrder)

	_, err = s.AddFavorite("11680", "강남구", "은마")
	assert.ErrorIs(t, err, favorites.ErrDuplicateFavorite)
}

func TestState_RemoveFavoritePrunesOrder(t *testing.T) {
	s := NewState(&memStore{}, logrus.New())
	fav, _ := s.AddFavorite("11680", "강남구", "은마")

	require.NoError(t, s.RemoveFavorite(fav.ID))
	assert.NotContains(t, s.Config().DashboardOrder, AptKey(fav.ID))
	assert.ErrorIs(t, s.RemoveFavorite(fav.ID), favorites.ErrFavoriteNotFound)
}

func TestState_SetOrderReconcilesStaleInput(t *testing.T) {
	s := NewState(&memStore{}, logrus.New())

	got := s.SetOrder([]string{"coin:KRW-ETH", "bogus-key", "coin:KRW-BTC"})

	assert.Equal(t, "coin:KRW-ETH", got[0])
	assert.Equal(t, "coin:KRW-BTC", got[1])
	assert.NotContains(t, got, "bogus-key")
	assert.ElementsMatch(t, CurrentKeys(s.Config()), got)
}

func TestState_RefreshScopesTokens(t *testing.T) {
	s := NewState(&memStore{}, logrus.New())

	assert.Equal(t, "0", s.Token("11680"))
	assert.Equal(t, "0", s.Token("11650"))

	tok := s.Refresh("11680")
	assert.NotEqual(t, "0", tok)
	assert.Equal(t, tok, s.Token("11680"))

	// Other regions keep their token
	assert.Equal(t, "0", s.Token("11650"))
}

func TestState_SetSelectionsReordersGrid(t *testing.T) {
	st := &memStore{}
	s := NewState(st, logrus.New())

	s.SetSelections([]string{"KRW-SOL"}, []string{"AAPL"}, "NVDA")

	cfg := s.Config()
	assert.Equal(t, []string{"KRW-SOL"}, cfg.SelectedCoins)
	assert.NotContains(t, cfg.DashboardOrder, "coin:KRW-BTC")
	assert.Contains(t, cfg.DashboardOrder, "stock:NVDA")
	assert.Equal(t, cfg.DashboardOrder, st.cfg.DashboardOrder)
}
