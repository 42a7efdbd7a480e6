package molit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// Fetcher is the network-facing side of the cache. *Client satisfies it.
type Fetcher interface {
	FetchMonth(ctx context.Context, lawdCd, dealYmd string) models.FetchResult
}

// Observer is called with freshly fetched rows, outside the cache lock.
// Cache hits never fire it.
type Observer func(lawdCd string, rows []models.TransactionRecord)

type monthKey struct {
	lawdCd    string
	yearMonth string
	token     string
}

type cacheEntry struct {
	result    models.FetchResult
	fetchedAt time.Time
}

// MonthlyCache memoizes registry calls per (region, month, invalidation
// token). Empty and failed results are cached too: a month with no
// transactions is not retried against the network until the entry expires or
// the caller bumps the token. Entries are never evicted; at tens of regions
// and months the map stays small.
type MonthlyCache struct {
	fetcher  Fetcher
	ttl      time.Duration
	logger   *logrus.Logger
	observer Observer

	mu      sync.RWMutex
	entries map[monthKey]cacheEntry

	now func() time.Time
}

func NewMonthlyCache(fetcher Fetcher, ttl time.Duration, logger *logrus.Logger) *MonthlyCache {
	return &MonthlyCache{
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[monthKey]cacheEntry),
		now:     time.Now,
	}
}

// SetObserver registers the hook fed with rows from fresh fetches. Must be
// called before the cache is shared across goroutines.
func (c *MonthlyCache) SetObserver(obs Observer) {
	c.observer = obs
}

// GetMonth returns the cached result for (lawdCd, yearMonth, token), fetching
// once on a miss or after expiry. Bumping the token readdresses every month
// under that region; entries under other tokens are untouched.
func (c *MonthlyCache) GetMonth(ctx context.Context, lawdCd, yearMonth, token string) models.FetchResult {
	key := monthKey{lawdCd: lawdCd, yearMonth: yearMonth, token: token}

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.result
	}

	result := c.fetcher.FetchMonth(ctx, lawdCd, yearMonth)

	c.mu.Lock()
	// A concurrent fetch for the same key may have landed first; the results
	// are equivalent, last write wins.
	c.entries[key] = cacheEntry{result: result, fetchedAt: c.now()}
	size := len(c.entries)
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"lawd_cd":    lawdCd,
		"year_month": yearMonth,
		"status":     result.Status.String(),
		"entries":    size,
	}).Debug("Cached registry month")

	if c.observer != nil && result.Status == models.StatusData {
		c.observer(lawdCd, result.Rows)
	}

	return result
}

// Len returns the number of cached entries.
func (c *MonthlyCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
