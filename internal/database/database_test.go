package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wondash/server/internal/models"
	"wondash/server/internal/queue"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := NewArchive(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, a.RunMigrations())
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleRows() []models.TransactionRecord {
	return []models.TransactionRecord{
		{LawdCd: "11680", AptName: "은마", Dong: "대치동", Price: 250000, Area: 84.43, Floor: "9", BuiltYear: "1979", ContractDate: "2026-08-03"},
		{LawdCd: "11680", AptName: "은마", Dong: "대치동", Price: 260000, Area: 84.43, Floor: "12", BuiltYear: "1979", ContractDate: "2026-08-21"},
		{LawdCd: "11650", AptName: "래미안퍼스티지", Dong: "반포동", Price: 450000, Area: 59.96, Floor: "5", BuiltYear: "2009", ContractDate: "2026-07-15"},
	}
}

func TestArchive_InsertIsIdempotent(t *testing.T) {
	a := newTestArchive(t)

	require.NoError(t, a.InsertTransactions(sampleRows()))
	// Re-observing the same month must not duplicate rows
	require.NoError(t, a.InsertTransactions(sampleRows()))

	stats, err := a.RegionStats("11680")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTransactions)
}

func TestArchive_RecentSalesOrderAndScope(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.InsertTransactions(sampleRows()))

	sales, err := a.RecentSales("11680", 10)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, "2026-08-21", sales[0].ContractDate)
	assert.Equal(t, "2026-08-03", sales[1].ContractDate)

	sales, err = a.RecentSales("11680", 1)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, 260000, sales[0].Price)
}

func TestArchive_RegionStats(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.InsertTransactions([]models.TransactionRecord{
		{LawdCd: "11680", AptName: "은마", Price: 200000, Area: 80, ContractDate: "2026-08-01", Floor: "1"},
		{LawdCd: "11680", AptName: "은마", Price: 300000, Area: 100, ContractDate: "2026-08-02", Floor: "2"},
		// Degraded parse: zero area must not poison the per-m² average
		{LawdCd: "11680", AptName: "은마", Price: 100000, Area: 0, ContractDate: "2026-08-03", Floor: "3"},
	}))

	stats, err := a.RegionStats("11680")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTransactions)
	assert.InDelta(t, 200000, stats.AveragePrice, 0.01)
	// (200000*10000/80 + 300000*10000/100) / 2
	assert.InDelta(t, 27500000, stats.AvgPricePerSqm, 0.01)

	empty, err := a.RegionStats("99999")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalTransactions)
	assert.Equal(t, 0.0, empty.AveragePrice)
}

func TestWriter_DrainsQueueIntoArchive(t *testing.T) {
	a := newTestArchive(t)
	q := queue.NewTransactionQueue(8, logrus.New())

	w := NewWriter(a, q, 1, 10*time.Millisecond, logrus.New())
	w.Start()
	defer q.Close()

	require.NoError(t, q.Push(sampleRows()))

	require.Eventually(t, func() bool {
		stats, err := a.RegionStats("11680")
		return err == nil && stats.TotalTransactions == 2
	}, 2*time.Second, 20*time.Millisecond)
}
