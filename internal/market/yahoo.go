package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart API.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// usdKrwSymbol is the Yahoo symbol for the USD/KRW rate.
const usdKrwSymbol = "KRW=X"

// YahooClient serves equity quotes and the USD/KRW exchange rate from the
// chart endpoint. Equity quotes cache on the ticker TTL; the FX rate moves
// slowly and caches longer.
type YahooClient struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string

	quoteTTL time.Duration
	fxTTL    time.Duration

	mu     sync.Mutex
	quotes map[string]cachedQuote

	now func() time.Time
}

func NewYahooClient(quoteTTL, fxTTL time.Duration, logger *logrus.Logger) *YahooClient {
	return &YahooClient{
		logger:   logger,
		client:   &http.Client{Timeout: 5 * time.Second},
		baseURL:  DefaultYahooBaseURL,
		quoteTTL: quoteTTL,
		fxTTL:    fxTTL,
		quotes:   make(map[string]cachedQuote),
		now:      time.Now,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *YahooClient) SetBaseURL(u string) {
	c.baseURL = u
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// StockQuote returns the latest price, day-over-day change and trade currency
// for one ticker. Failures degrade to a zero quote.
func (c *YahooClient) StockQuote(ctx context.Context, ticker string) models.Quote {
	return c.quote(ctx, ticker, "2d", c.quoteTTL)
}

// ExchangeRate returns the USD/KRW rate. A 5-day range covers weekends when
// the pair does not print.
func (c *YahooClient) ExchangeRate(ctx context.Context) models.Quote {
	return c.quote(ctx, usdKrwSymbol, "5d", c.fxTTL)
}

func (c *YahooClient) quote(ctx context.Context, symbol, window string, ttl time.Duration) models.Quote {
	c.mu.Lock()
	if entry, ok := c.quotes[symbol]; ok && c.now().Sub(entry.fetchedAt) < ttl {
		c.mu.Unlock()
		return entry.quote
	}
	c.mu.Unlock()

	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", c.baseURL, url.PathEscape(symbol), window)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Quote{}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (wondash)")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Error("Quote request failed")
		return models.Quote{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("Quote endpoint returned non-200 status")
		return models.Quote{}
	}

	var parsed chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Error("Failed to parse quote response")
		return models.Quote{}
	}

	if parsed.Chart.Error != nil || len(parsed.Chart.Result) == 0 {
		c.logger.WithField("symbol", symbol).Warn("No quote data returned")
		return models.Quote{}
	}

	meta := parsed.Chart.Result[0].Meta
	q := models.Quote{
		Price:    meta.RegularMarketPrice,
		Currency: meta.Currency,
	}
	if meta.ChartPreviousClose > 0 {
		q.ChangePct = (meta.RegularMarketPrice - meta.ChartPreviousClose) / meta.ChartPreviousClose * 100
	}
	if q.Currency == "" {
		q.Currency = "KRW"
	}

	if q.Price > 0 {
		c.mu.Lock()
		c.quotes[symbol] = cachedQuote{quote: q, fetchedAt: c.now()}
		c.mu.Unlock()
	}
	return q
}
