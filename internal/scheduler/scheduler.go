package scheduler

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// CoinAlert is a target price watch on a single Upbit market.
type CoinAlert struct {
	Market string
	Target float64
}

// ParseCoinAlerts parses alert specs of the form "KRW-BTC:100000000".
// Malformed entries are logged and skipped.
func ParseCoinAlerts(specs []string, logger *logrus.Logger) []CoinAlert {
	var alerts []CoinAlert
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 {
			logger.WithField("spec", spec).Warn("Ignoring malformed coin alert")
			continue
		}

		target, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || target <= 0 {
			logger.WithField("spec", spec).Warn("Ignoring coin alert with invalid target price")
			continue
		}

		alerts = append(alerts, CoinAlert{Market: parts[0], Target: target})
	}
	return alerts
}

// QuoteSource provides current coin prices for a batch of markets. A market
// the source cannot price comes back as a zero quote.
type QuoteSource interface {
	CoinQuotes(ctx context.Context, markets []string) map[string]models.Quote
}

// Notifier delivers target price notifications.
type Notifier interface {
	Enabled() bool
	NotifyTargetPrice(market string, price, target float64) error
}

// RegionSource lists the region codes of the favorited apartments.
type RegionSource interface {
	FavoriteRegions() []string
}

// NamesRefresher warms the transaction cache for a region, which in turn
// feeds the known apartment names index.
type NamesRefresher interface {
	FetchPeriod(ctx context.Context, lawdCd string, months int) models.PeriodResult
}

// Scheduler runs the periodic background jobs: coin target price checks
// every minute and a nightly known-names refresh for favorited regions.
type Scheduler struct {
	quotes    QuoteSource
	notifier  Notifier
	refresher NamesRefresher
	regions   RegionSource
	logger    *logrus.Logger

	alerts []CoinAlert
	armed  map[string]bool

	refreshMonths int

	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex
}

// NewScheduler creates a scheduler. refresher may be nil when the registry
// credential is absent; the nightly refresh is then skipped.
func NewScheduler(quotes QuoteSource, notifier Notifier, refresher NamesRefresher, regions RegionSource, alerts []CoinAlert, refreshMonths int, logger *logrus.Logger) *Scheduler {
	armed := make(map[string]bool, len(alerts))
	for _, a := range alerts {
		armed[a.Market] = true
	}

	return &Scheduler{
		quotes:        quotes,
		notifier:      notifier,
		refresher:     refresher,
		regions:       regions,
		logger:        logger,
		alerts:        alerts,
		armed:         armed,
		refreshMonths: refreshMonths,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs all jobs that are due at the given time
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Second)
	defer cancel()

	s.checkCoinAlerts(ctx)

	// Nightly refresh keeps the known-names index warm for the regions
	// the user actually looks at
	if t.Hour() == 3 && t.Minute() == 0 {
		s.refreshKnownNames(ctx)
	}
}

// checkCoinAlerts fetches current prices for all watched markets and fires
// a notification for each market whose price crossed its target. An alert
// disarms after firing and re-arms once the price falls back below target,
// so a market hovering around the target does not spam the chat.
func (s *Scheduler) checkCoinAlerts(ctx context.Context) {
	if len(s.alerts) == 0 || s.notifier == nil || !s.notifier.Enabled() {
		return
	}

	markets := make([]string, 0, len(s.alerts))
	for _, a := range s.alerts {
		markets = append(markets, a.Market)
	}

	quotes := s.quotes.CoinQuotes(ctx, markets)

	for _, alert := range s.alerts {
		quote, ok := quotes[alert.Market]
		if !ok || quote.Price <= 0 {
			continue
		}

		switch {
		case quote.Price >= alert.Target && s.armed[alert.Market]:
			s.armed[alert.Market] = false
			s.logger.WithFields(logrus.Fields{
				"market": alert.Market,
				"price":  quote.Price,
				"target": alert.Target,
			}).Info("Coin target price reached")

			if err := s.notifier.NotifyTargetPrice(alert.Market, quote.Price, alert.Target); err != nil {
				s.logger.WithError(err).WithField("market", alert.Market).Error("Failed to send target price notification")
			}
		case quote.Price < alert.Target && !s.armed[alert.Market]:
			s.armed[alert.Market] = true
			s.logger.WithField("market", alert.Market).Debug("Coin alert re-armed")
		}
	}
}

// refreshKnownNames warms the trailing transaction window for every
// favorited region sequentially.
func (s *Scheduler) refreshKnownNames(ctx context.Context) {
	if s.refresher == nil || s.regions == nil {
		return
	}

	regions := s.regions.FavoriteRegions()
	s.logger.WithField("regions", len(regions)).Info("Starting nightly known-names refresh")

	for _, lawdCd := range regions {
		result := s.refresher.FetchPeriod(ctx, lawdCd, s.refreshMonths)
		s.logger.WithFields(logrus.Fields{
			"lawd_cd": lawdCd,
			"rows":    len(result.Rows),
		}).Info("Refreshed region transactions")
	}

	s.logger.Info("Completed nightly known-names refresh")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
