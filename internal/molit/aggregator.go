package molit

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wondash/server/internal/models"
)

// TrailingMonths returns n "YYYYMM" keys anchored at the given date, current
// month first, each subsequent key one calendar month earlier. The arithmetic
// is calendar-based, not 30-day subtraction: anchoring at March 31 still
// yields February as the second key.
func TrailingMonths(anchor time.Time, n int) []string {
	keys := make([]string, 0, n)
	year, month := anchor.Year(), anchor.Month()
	for i := 0; i < n; i++ {
		t := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		keys = append(keys, fmt.Sprintf("%04d%02d", t.Year(), int(t.Month())))
	}
	return keys
}

// Aggregator assembles a rolling multi-month transaction window through the
// monthly cache. Months are fetched concurrently with a bounded group; one
// month failing never cancels the others.
type Aggregator struct {
	cache   *MonthlyCache
	workers int
	logger  *logrus.Logger

	now func() time.Time
}

func NewAggregator(cache *MonthlyCache, workers int, logger *logrus.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		cache:   cache,
		workers: workers,
		logger:  logger,
		now:     time.Now,
	}
}

// FetchPeriod fetches the trailing window for one region. The returned rows
// are the concatenation of every month that produced data, in window order
// (most recent month's rows first); callers that need strict recency sort by
// contract date. The per-month status list distinguishes quiet months from
// failed fetches.
func (a *Aggregator) FetchPeriod(ctx context.Context, lawdCd string, months int, token string) models.PeriodResult {
	keys := TrailingMonths(a.now(), months)
	results := make([]models.FetchResult, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, ym := range keys {
		g.Go(func() error {
			results[i] = a.cache.GetMonth(gctx, lawdCd, ym, token)
			return nil
		})
	}
	// Fetches report failure through their status, never through an error.
	_ = g.Wait()

	out := models.PeriodResult{Months: make([]models.MonthStatus, 0, len(keys))}
	for i, res := range results {
		out.Months = append(out.Months, models.MonthStatus{
			YearMonth: keys[i],
			Status:    res.Status,
			Rows:      len(res.Rows),
			Reason:    res.Reason,
		})
		if res.Status == models.StatusData {
			out.Rows = append(out.Rows, res.Rows...)
		}
	}

	a.logger.WithFields(logrus.Fields{
		"lawd_cd": lawdCd,
		"months":  months,
		"rows":    len(out.Rows),
	}).Info("Assembled transaction window")

	return out
}
