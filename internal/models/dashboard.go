package models

// FavoriteAsset is a user-pinned apartment complex. ID is generated once and
// stays stable for the life of the entry; entries written by old versions of
// the dashboard may load without one and are assigned an ID on first load.
type FavoriteAsset struct {
	ID         string `json:"id"`
	LawdCd     string `json:"lawd_cd"`
	RegionName string `json:"region_name"`
	AptName    string `json:"apt_name"`
}

// DashboardConfig is the persisted dashboard state. The JSON field names are
// a stable on-disk schema shared with the gist mirror.
type DashboardConfig struct {
	FavoriteApts    []FavoriteAsset `json:"favorite_apts"`
	SelectedCoins   []string        `json:"selected_coins"`
	SelectedStocks  []string        `json:"selected_stocks"`
	CustomStock     string          `json:"custom_stock"`
	DashboardOrder  []string        `json:"dashboard_order"`
	SelectedAIModel string          `json:"selected_ai_model"`
}

// DefaultDashboardConfig returns the configuration used before the user has
// saved anything.
func DefaultDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		FavoriteApts:    []FavoriteAsset{},
		SelectedCoins:   []string{"KRW-BTC", "KRW-ETH", "KRW-XRP"},
		SelectedStocks:  []string{"005930.KS", "AAPL", "TSLA"},
		DashboardOrder:  []string{},
		SelectedAIModel: "models/gemini-1.5-flash",
	}
}

// Clone returns a deep copy so callers can hand out config snapshots without
// exposing internal slices to mutation.
func (c *DashboardConfig) Clone() *DashboardConfig {
	out := &DashboardConfig{
		FavoriteApts:    make([]FavoriteAsset, len(c.FavoriteApts)),
		SelectedCoins:   append([]string(nil), c.SelectedCoins...),
		SelectedStocks:  append([]string(nil), c.SelectedStocks...),
		CustomStock:     c.CustomStock,
		DashboardOrder:  append([]string(nil), c.DashboardOrder...),
		SelectedAIModel: c.SelectedAIModel,
	}
	copy(out.FavoriteApts, c.FavoriteApts)
	return out
}
