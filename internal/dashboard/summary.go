package dashboard

import (
	"context"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// Metric is one tile on the summary grid.
type Metric struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta"`
}

// QuoteSource supplies market prices for the grid.
type QuoteSource interface {
	CoinQuotes(ctx context.Context, markets []string) map[string]models.Quote
	StockQuote(ctx context.Context, ticker string) models.Quote
	ExchangeRate(ctx context.Context) models.Quote
}

// AptSource supplies the transaction window for favorite complexes.
type AptSource interface {
	FetchPeriod(ctx context.Context, lawdCd string, months int, token string) models.PeriodResult
}

// SummaryBuilder assembles the metric grid in the persisted display order.
type SummaryBuilder struct {
	logger *logrus.Logger
	quotes QuoteSource
	apts   AptSource
	months int
}

func NewSummaryBuilder(quotes QuoteSource, apts AptSource, months int, logger *logrus.Logger) *SummaryBuilder {
	return &SummaryBuilder{
		logger: logger,
		quotes: quotes,
		apts:   apts,
		months: months,
	}
}

// Build produces one metric per display key. A favorite with no data in the
// window, a failed registry path, or a zero quote all render as degraded
// tiles rather than dropping out of the grid.
func (b *SummaryBuilder) Build(ctx context.Context, state *State) []Metric {
	cfg := state.Config()
	order := ReconcileOrder(CurrentKeys(cfg), cfg.DashboardOrder)

	coins := b.quotes.CoinQuotes(ctx, cfg.SelectedCoins)

	byKey := make(map[string]Metric, len(order))

	for _, market := range cfg.SelectedCoins {
		key := CoinKey(market)
		byKey[key] = quoteMetric(key, "🪙 "+market, coins[market], money.KRW)
	}

	stocks := append([]string(nil), cfg.SelectedStocks...)
	if cfg.CustomStock != "" {
		stocks = append(stocks, cfg.CustomStock)
	}
	for _, ticker := range stocks {
		key := StockKey(ticker)
		if _, ok := byKey[key]; ok {
			continue
		}
		q := b.quotes.StockQuote(ctx, ticker)
		currency := q.Currency
		if currency == "" {
			currency = money.KRW
		}
		byKey[key] = quoteMetric(key, "📈 "+ticker, q, currency)
	}

	for _, fav := range cfg.FavoriteApts {
		byKey[AptKey(fav.ID)] = b.aptMetric(ctx, state, fav)
	}

	fx := b.quotes.ExchangeRate(ctx)
	fxMetric := Metric{Key: FxKey, Label: "💱 USD/KRW", Value: "데이터 없음", Delta: "설정 확인"}
	if fx.Price > 0 {
		fxMetric.Value = fmt.Sprintf("%.2f", fx.Price)
		fxMetric.Delta = fmt.Sprintf("%.2f%%", fx.ChangePct)
	}
	byKey[FxKey] = fxMetric

	out := make([]Metric, 0, len(order))
	for _, key := range order {
		if m, ok := byKey[key]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (b *SummaryBuilder) aptMetric(ctx context.Context, state *State, fav models.FavoriteAsset) Metric {
	metric := Metric{
		Key:   AptKey(fav.ID),
		Label: "🏠 " + fav.AptName,
		Value: "데이터 없음",
		Delta: "설정 확인",
	}
	if b.apts == nil {
		return metric
	}

	period := b.apts.FetchPeriod(ctx, fav.LawdCd, b.months, state.Token(fav.LawdCd))

	var mine []models.TransactionRecord
	for _, row := range period.Rows {
		if row.AptName == fav.AptName {
			mine = append(mine, row)
		}
	}

	latest, ok := models.MostRecent(mine)
	if !ok {
		return metric
	}

	// Registry amounts are 10k-won units
	metric.Value = money.New(int64(latest.Price)*10000, money.KRW).Display()
	metric.Delta = fmt.Sprintf("최근 실거래 %s", latest.ContractDate)
	return metric
}

func quoteMetric(key, label string, q models.Quote, currency string) Metric {
	if q.Price <= 0 {
		return Metric{Key: key, Label: label, Value: "데이터 없음", Delta: "설정 확인"}
	}
	return Metric{
		Key:   key,
		Label: label,
		Value: money.NewFromFloat(q.Price, currency).Display(),
		Delta: fmt.Sprintf("%.2f%%", q.ChangePct),
	}
}
