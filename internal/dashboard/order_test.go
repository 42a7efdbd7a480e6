package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wondash/server/internal/models"
)

func TestReconcileOrder_PermutationLaw(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		stored  []string
	}{
		{"empty stored", []string{"a", "b", "c"}, nil},
		{"stale keys dropped", []string{"a", "b"}, []string{"x", "a", "y", "b"}},
		{"missing keys appended", []string{"a", "b", "c"}, []string{"b"}},
		{"duplicates in stored collapse", []string{"a", "b"}, []string{"b", "b", "a", "b"}},
		{"disjoint", []string{"a"}, []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconcileOrder(tt.current, tt.stored)

			assert.Len(t, got, len(tt.current))
			assert.ElementsMatch(t, tt.current, got)

			seen := make(map[string]bool)
			for _, k := range got {
				assert.False(t, seen[k], "duplicate key %q", k)
				seen[k] = true
			}
		})
	}
}

func TestReconcileOrder_Stability(t *testing.T) {
	// Pre-existing relative order wins over enumeration order
	got := ReconcileOrder([]string{"a", "b"}, []string{"b", "a"})
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestReconcileOrder_NewKeysAppendAtEnd(t *testing.T) {
	got := ReconcileOrder([]string{"a", "b", "c", "d"}, []string{"c", "a"})
	assert.Equal(t, []string{"c", "a", "b", "d"}, got)
}

func TestReconcileOrder_Idempotent(t *testing.T) {
	current := []string{"coin:KRW-BTC", "stock:AAPL", "apt:id-1", FxKey}
	stored := []string{"apt:id-1", "stale-key", "coin:KRW-BTC"}

	once := ReconcileOrder(current, stored)
	twice := ReconcileOrder(current, once)
	assert.Equal(t, once, twice)
}

func TestCurrentKeys_EnumerationOrder(t *testing.T) {
	cfg := &models.DashboardConfig{
		FavoriteApts: []models.FavoriteAsset{
			{ID: "id-1", LawdCd: "11680", AptName: "은마"},
		},
		SelectedCoins:  []string{"KRW-BTC", "KRW-ETH"},
		SelectedStocks: []string{"005930.KS"},
		CustomStock:    "NVDA",
	}

	assert.Equal(t, []string{
		"coin:KRW-BTC",
		"coin:KRW-ETH",
		"stock:005930.KS",
		"stock:NVDA",
		"apt:id-1",
		FxKey,
	}, CurrentKeys(cfg))
}

func TestCurrentKeys_CustomStockDuplicateCollapses(t *testing.T) {
	cfg := &models.DashboardConfig{
		SelectedStocks: []string{"NVDA"},
		CustomStock:    "NVDA",
	}
	assert.Equal(t, []string{"stock:NVDA", FxKey}, CurrentKeys(cfg))
}
