package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"wondash/server/config"
	"wondash/server/internal/api"
	"wondash/server/internal/aptnames"
	"wondash/server/internal/dashboard"
	"wondash/server/internal/database"
	"wondash/server/internal/market"
	"wondash/server/internal/models"
	"wondash/server/internal/molit"
	"wondash/server/internal/news"
	"wondash/server/internal/queue"
	"wondash/server/internal/report"
	"wondash/server/internal/scheduler"
	"wondash/server/internal/store"
	"wondash/server/internal/telegram"
)

// namesRefresher joins the aggregator with the per-region cache tokens so the
// nightly refresh reads through the same cache as interactive requests.
type namesRefresher struct {
	aggregator *molit.Aggregator
	state      *dashboard.State
}

func (r *namesRefresher) FetchPeriod(ctx context.Context, lawdCd string, months int) models.PeriodResult {
	return r.aggregator.FetchPeriod(ctx, lawdCd, months, r.state.Token(lawdCd))
}

func main() {
	// A missing .env is fine; real deployments use environment variables
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize the transaction archive
	archive, err := database.NewArchive(cfg.ArchivePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open transaction archive")
	}
	defer archive.Close()

	logger.Info("Running database migrations...")
	if err := archive.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Archive writes flow through a queue so registry fetches never block on
	// the database
	txQueue := queue.NewTransactionQueue(cfg.Archive.QueueSize, logger)
	defer txQueue.Close()

	writer := database.NewWriter(archive, txQueue, cfg.Archive.MaxRetries,
		time.Duration(cfg.Archive.RetryDelay)*time.Second, logger)
	writer.Start()

	// Dashboard config persistence, optionally mirrored to a gist
	var st store.Store = store.NewFileStore(cfg.ConfigPath)
	if cfg.Gist.Token != "" && cfg.Gist.ID != "" {
		logger.Info("Mirroring dashboard config to gist")
		st = store.NewCompositeStore(st, store.NewGistStore(cfg.Gist.Token, cfg.Gist.ID), logger)
	}

	state := dashboard.NewState(st, logger)
	names := aptnames.NewIndex(cfg.AptListPath, logger)

	// Registry access is optional; without the credential the apartment
	// endpoints answer 503 and everything else keeps working
	var aggregator *molit.Aggregator
	if cfg.ServiceKey != "" {
		client := molit.NewClient(cfg.ServiceKey, logger)
		cache := molit.NewMonthlyCache(client, time.Duration(cfg.Cache.AptTradeTTLHours)*time.Hour, logger)
		cache.SetObserver(func(lawdCd string, rows []models.TransactionRecord) {
			observed := make([]string, 0, len(rows))
			for _, row := range rows {
				observed = append(observed, row.AptName)
			}
			names.Merge(lawdCd, observed)

			if err := txQueue.Push(rows); err != nil {
				logger.WithError(err).WithField("lawd_cd", lawdCd).Warn("Dropped archive batch")
			}
		})
		aggregator = molit.NewAggregator(cache, cfg.Aggregator.Workers, logger)
	} else {
		logger.Warn("DATA_GO_KR_API_KEY is not set, apartment endpoints are disabled")
	}

	upbit := market.NewUpbitClient(
		time.Duration(cfg.Cache.TickerTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.MarketListTTLHours)*time.Hour,
		logger,
	)
	yahoo := market.NewYahooClient(
		time.Duration(cfg.Cache.TickerTTLSeconds)*time.Second,
		time.Duration(cfg.Cache.FxTTLMinutes)*time.Minute,
		logger,
	)
	quotes := &market.Quotes{Upbit: upbit, Yahoo: yahoo}
	newsClient := news.NewClient(logger)

	var reports *report.Generator
	if cfg.GeminiAPIKey != "" {
		reports, err = report.NewGenerator(context.Background(), cfg.GeminiAPIKey, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to initialize report generator, reports are disabled")
			reports = nil
		}
	} else {
		logger.Warn("GEMINI_API_KEY is not set, AI reports are disabled")
	}

	summary := dashboard.NewSummaryBuilder(quotes, aptSource(aggregator), cfg.Aggregator.Months, logger)

	// Background jobs: coin target price alerts and the nightly known-names
	// refresh
	notifier := telegram.NewService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)
	alerts := scheduler.ParseCoinAlerts(cfg.Telegram.CoinAlerts, logger)

	var refresher scheduler.NamesRefresher
	if aggregator != nil {
		refresher = &namesRefresher{aggregator: aggregator, state: state}
	}
	sched := scheduler.NewScheduler(upbit, notifier, refresher, state, alerts, cfg.Aggregator.Months, logger)
	sched.Start()
	defer sched.Stop()

	handler := api.NewHandler(api.Deps{
		State:      state,
		Summary:    summary,
		Aggregator: aggregator,
		Names:      names,
		Upbit:      upbit,
		News:       newsClient,
		Reports:    reports,
		Archive:    archive,
		Months:     cfg.Aggregator.Months,
	}, logger)

	router := gin.Default()
	api.SetupRoutes(router, handler, cfg.AppPassword)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

// aptSource keeps a nil aggregator from becoming a non-nil interface value.
func aptSource(a *molit.Aggregator) dashboard.AptSource {
	if a == nil {
		return nil
	}
	return a
}
