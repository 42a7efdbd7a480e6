package dashboard

import "wondash/server/internal/models"

// Display key prefixes. A key identifies one metric tile on the grid.
const (
	coinKeyPrefix  = "coin:"
	stockKeyPrefix = "stock:"
	aptKeyPrefix   = "apt:"

	// FxKey is the informational USD/KRW placeholder tile
	FxKey = "fx:usdkrw"
)

func CoinKey(market string) string  { return coinKeyPrefix + market }
func StockKey(ticker string) string { return stockKeyPrefix + ticker }
func AptKey(favoriteID string) string {
	return aptKeyPrefix + favoriteID
}

// CurrentKeys enumerates every display key the configuration can currently
// produce: coins, then stocks (custom stock last), then apartment favorites,
// then informational placeholders. This enumeration order is what new keys
// are appended in during reconciliation.
func CurrentKeys(cfg *models.DashboardConfig) []string {
	keys := make([]string, 0, len(cfg.SelectedCoins)+len(cfg.SelectedStocks)+len(cfg.FavoriteApts)+2)
	for _, market := range cfg.SelectedCoins {
		keys = append(keys, CoinKey(market))
	}
	for _, ticker := range cfg.SelectedStocks {
		keys = append(keys, StockKey(ticker))
	}
	if cfg.CustomStock != "" {
		keys = append(keys, StockKey(cfg.CustomStock))
	}
	for _, fav := range cfg.FavoriteApts {
		keys = append(keys, AptKey(fav.ID))
	}
	keys = append(keys, FxKey)
	return dedupe(keys)
}

// ReconcileOrder merges a stored display order with the keys the live
// configuration produces: stale keys are dropped, surviving keys keep their
// stored relative order, and new keys are appended in enumeration order. The
// result is always a permutation of currentKeys, and the function is pure and
// idempotent.
func ReconcileOrder(currentKeys, stored []string) []string {
	current := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		current[k] = true
	}

	out := make([]string, 0, len(currentKeys))
	placed := make(map[string]bool, len(currentKeys))

	for _, k := range stored {
		if current[k] && !placed[k] {
			out = append(out, k)
			placed[k] = true
		}
	}
	for _, k := range currentKeys {
		if !placed[k] {
			out = append(out, k)
			placed[k] = true
		}
	}
	return out
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
