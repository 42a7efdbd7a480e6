package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// HTTP port the API server listens on
	Port string `env:"PORT" envDefault:"5250"`

	// Credentials. Absence of the registry key disables the apartment
	// endpoints; absence of the Gemini key disables the report endpoint.
	ServiceKey   string `env:"DATA_GO_KR_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	AppPassword  string `env:"APP_PASSWORD"`

	// Persistence paths
	ConfigPath  string `env:"DASHBOARD_CONFIG_PATH" envDefault:"dashboard_config.json"`
	AptListPath string `env:"APT_LIST_PATH" envDefault:"apt_list.json"`
	ArchivePath string `env:"ARCHIVE_PATH" envDefault:"database/wondash.db"`

	// Optional gist mirror of the dashboard config
	Gist struct {
		Token string `env:"GIST_TOKEN"`
		ID    string `env:"GIST_ID"`
	}

	Cache struct {
		// Registry months are near-immutable once the reporting window
		// closes, so they keep for a week
		AptTradeTTLHours int `env:"APT_TRADE_TTL_HOURS" envDefault:"168"`

		TickerTTLSeconds   int `env:"TICKER_TTL_SECONDS" envDefault:"60"`
		MarketListTTLHours int `env:"MARKET_LIST_TTL_HOURS" envDefault:"24"`
		FxTTLMinutes       int `env:"FX_TTL_MINUTES" envDefault:"60"`
	}

	Aggregator struct {
		// Trailing window length in calendar months
		Months int `env:"AGGREGATOR_MONTHS" envDefault:"12"`

		// Concurrent month fetches on a cold cache
		Workers int `env:"AGGREGATOR_WORKERS" envDefault:"4"`
	}

	Archive struct {
		// Maximum retries for a failed archive batch write
		MaxRetries int `env:"ARCHIVE_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"ARCHIVE_RETRY_DELAY" envDefault:"5"`

		// Queue buffer size in batches
		QueueSize int `env:"ARCHIVE_QUEUE_SIZE" envDefault:"64"`
	}

	Telegram struct {
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`

		// Coin price targets, e.g. "KRW-BTC:100000000,KRW-ETH:5000000"
		CoinAlerts []string `env:"COIN_ALERTS" envSeparator:","`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
