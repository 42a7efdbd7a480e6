package molit

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wondash/server/internal/models"
)

func TestTrailingMonths(t *testing.T) {
	anchor := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"202602", "202601", "202512"}, TrailingMonths(anchor, 3))

	// Calendar stepping, not 30-day subtraction: March 31 steps to February
	anchor = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"202603", "202602", "202601"}, TrailingMonths(anchor, 3))
}

func newTestAggregator(fetcher Fetcher, workers int) *Aggregator {
	cache := NewMonthlyCache(fetcher, time.Hour, logrus.New())
	agg := NewAggregator(cache, workers, logrus.New())
	agg.now = func() time.Time { return time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC) }
	return agg
}

func TestFetchPeriod_PartialTolerance(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("11680", "202608", dataResult(
		models.TransactionRecord{AptName: "은마", Price: 250000, ContractDate: "2026-08-03"},
		models.TransactionRecord{AptName: "은마", Price: 260000, ContractDate: "2026-08-21"},
	))
	// 202607 defaults to empty
	fetcher.set("11680", "202606", models.FetchResult{Status: models.StatusFailed, Reason: "timeout"})

	agg := newTestAggregator(fetcher, 2)
	result := agg.FetchPeriod(context.Background(), "11680", 3, "t1")

	require.Len(t, result.Rows, 2)
	require.Len(t, result.Months, 3)

	assert.Equal(t, "202608", result.Months[0].YearMonth)
	assert.Equal(t, models.StatusData, result.Months[0].Status)
	assert.Equal(t, 2, result.Months[0].Rows)
	assert.Equal(t, models.StatusEmpty, result.Months[1].Status)
	assert.Equal(t, models.StatusFailed, result.Months[2].Status)
	assert.Equal(t, "timeout", result.Months[2].Reason)
}

func TestFetchPeriod_AllEmpty(t *testing.T) {
	agg := newTestAggregator(newFakeFetcher(), 4)
	result := agg.FetchPeriod(context.Background(), "11680", 6, "t1")

	assert.Empty(t, result.Rows)
	require.Len(t, result.Months, 6)
	for _, m := range result.Months {
		assert.Equal(t, models.StatusEmpty, m.Status)
	}
}

func TestFetchPeriod_MostRecentIndependentOfRowOrder(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("11680", "202608", dataResult(
		models.TransactionRecord{AptName: "은마", Price: 250000, ContractDate: "2026-08-21"},
		models.TransactionRecord{AptName: "은마", Price: 260000, ContractDate: "2026-08-03"},
	))

	agg := newTestAggregator(fetcher, 1)
	result := agg.FetchPeriod(context.Background(), "11680", 3, "t1")
	require.Len(t, result.Rows, 2)

	latest, ok := models.MostRecent(result.Rows)
	require.True(t, ok)
	assert.Equal(t, "2026-08-21", latest.ContractDate)
	assert.Equal(t, 250000, latest.Price)

	models.SortByDateDesc(result.Rows)
	assert.Equal(t, "2026-08-21", result.Rows[0].ContractDate)
}

func TestFetchPeriod_WindowOrderPreserved(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set("11680", "202608", dataResult(models.TransactionRecord{ContractDate: "2026-08-01"}))
	fetcher.set("11680", "202606", dataResult(models.TransactionRecord{ContractDate: "2026-06-01"}))

	// More workers than months; merge order must still follow the window
	agg := newTestAggregator(fetcher, 8)
	result := agg.FetchPeriod(context.Background(), "11680", 3, "t1")

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "2026-08-01", result.Rows[0].ContractDate)
	assert.Equal(t, "2026-06-01", result.Rows[1].ContractDate)
}
