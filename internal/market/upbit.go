package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// DefaultUpbitBaseURL is the public Upbit quotation API.
const DefaultUpbitBaseURL = "https://api.upbit.com"

type cachedQuote struct {
	quote     models.Quote
	fetchedAt time.Time
}

// UpbitClient serves KRW-market coin quotes and the tradable market list.
// Quotes are cached briefly; the market list changes rarely and is cached
// for a day. Failures degrade to zero quotes and are retried on next access
// (only successes enter the cache).
type UpbitClient struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string

	tickerTTL  time.Duration
	marketsTTL time.Duration

	mu        sync.Mutex
	quotes    map[string]cachedQuote
	markets   []models.MarketInfo
	marketsAt time.Time

	now func() time.Time
}

func NewUpbitClient(tickerTTL, marketsTTL time.Duration, logger *logrus.Logger) *UpbitClient {
	return &UpbitClient{
		logger:     logger,
		client:     &http.Client{Timeout: 5 * time.Second},
		baseURL:    DefaultUpbitBaseURL,
		tickerTTL:  tickerTTL,
		marketsTTL: marketsTTL,
		quotes:     make(map[string]cachedQuote),
		now:        time.Now,
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (c *UpbitClient) SetBaseURL(u string) {
	c.baseURL = u
}

type upbitTicker struct {
	Market           string  `json:"market"`
	TradePrice       float64 `json:"trade_price"`
	SignedChangeRate float64 `json:"signed_change_rate"`
}

type upbitMarket struct {
	Market     string `json:"market"`
	KoreanName string `json:"korean_name"`
}

// CoinQuotes returns a quote per requested market. Uncached markets are
// fetched in one batch request; a market the exchange does not report comes
// back as a zero quote.
func (c *UpbitClient) CoinQuotes(ctx context.Context, markets []string) map[string]models.Quote {
	out := make(map[string]models.Quote, len(markets))
	var missing []string

	c.mu.Lock()
	for _, m := range markets {
		if entry, ok := c.quotes[m]; ok && c.now().Sub(entry.fetchedAt) < c.tickerTTL {
			out[m] = entry.quote
		} else {
			missing = append(missing, m)
		}
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out
	}

	url := fmt.Sprintf("%s/v1/ticker?markets=%s", c.baseURL, strings.Join(missing, ","))
	var tickers []upbitTicker
	if err := c.getJSON(ctx, url, &tickers); err != nil {
		c.logger.WithError(err).WithField("markets", missing).Error("Failed to fetch coin prices")
		for _, m := range missing {
			out[m] = models.Quote{Currency: "KRW"}
		}
		return out
	}

	fetched := make(map[string]models.Quote, len(tickers))
	for _, t := range tickers {
		fetched[t.Market] = models.Quote{
			Price:     t.TradePrice,
			ChangePct: t.SignedChangeRate * 100,
			Currency:  "KRW",
		}
	}

	c.mu.Lock()
	for m, q := range fetched {
		c.quotes[m] = cachedQuote{quote: q, fetchedAt: c.now()}
	}
	c.mu.Unlock()

	for _, m := range missing {
		if q, ok := fetched[m]; ok {
			out[m] = q
		} else {
			out[m] = models.Quote{Currency: "KRW"}
		}
	}
	return out
}

// Markets returns the KRW-quoted markets with their Korean names.
func (c *UpbitClient) Markets(ctx context.Context) []models.MarketInfo {
	c.mu.Lock()
	if c.markets != nil && c.now().Sub(c.marketsAt) < c.marketsTTL {
		cached := c.markets
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	var all []upbitMarket
	if err := c.getJSON(ctx, c.baseURL+"/v1/market/all?isDetails=false", &all); err != nil {
		c.logger.WithError(err).Error("Failed to fetch market list")
		return nil
	}

	krw := make([]models.MarketInfo, 0, len(all))
	for _, m := range all {
		if strings.HasPrefix(m.Market, "KRW-") {
			krw = append(krw, models.MarketInfo{Market: m.Market, KoreanName: m.KoreanName})
		}
	}

	c.mu.Lock()
	c.markets = krw
	c.marketsAt = c.now()
	c.mu.Unlock()

	return krw
}

func (c *UpbitClient) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
