package models

// Quote is a point-in-time price for a coin, equity or currency pair.
// ChangePct is the signed day-over-day change in percent.
type Quote struct {
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
	Currency  string  `json:"currency"`
}

// MarketInfo describes one tradable market on the crypto exchange.
type MarketInfo struct {
	Market     string `json:"market"`
	KoreanName string `json:"korean_name"`
}

// NewsItem is one headline from the news feed.
type NewsItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Published string `json:"published"`
}
