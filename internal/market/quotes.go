package market

import (
	"context"

	"wondash/server/internal/models"
)

// Quotes composes the Upbit and Yahoo clients into a single price source
// covering coins, equities and the USD/KRW rate.
type Quotes struct {
	Upbit *UpbitClient
	Yahoo *YahooClient
}

func (q *Quotes) CoinQuotes(ctx context.Context, markets []string) map[string]models.Quote {
	return q.Upbit.CoinQuotes(ctx, markets)
}

func (q *Quotes) StockQuote(ctx context.Context, ticker string) models.Quote {
	return q.Yahoo.StockQuote(ctx, ticker)
}

func (q *Quotes) ExchangeRate(ctx context.Context) models.Quote {
	return q.Yahoo.ExchangeRate(ctx)
}
