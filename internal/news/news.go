package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"wondash/server/internal/models"
)

// DefaultBaseURL is the Google News RSS endpoint.
const DefaultBaseURL = "https://news.google.com"

const maxItems = 5

// Client searches Google News for Korean-language headlines.
type Client struct {
	logger  *logrus.Logger
	client  *http.Client
	baseURL string
}

func NewClient(logger *logrus.Logger) *Client {
	return &Client{
		logger:  logger,
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: DefaultBaseURL,
	}
}

// SetBaseURL overrides the feed endpoint, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
	Source  string `xml:"source"`
}

// Search returns up to five headlines for a keyword. Any failure resolves to
// an empty list; a news outage never breaks the dashboard.
func (c *Client) Search(ctx context.Context, keyword string) []models.NewsItem {
	u := fmt.Sprintf("%s/rss/search?q=%s&hl=ko&gl=KR&ceid=KR:ko", c.baseURL, url.QueryEscape(keyword))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("keyword", keyword).Error("News request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"keyword": keyword,
			"status":  resp.StatusCode,
		}).Warn("News feed returned non-200 status")
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		c.logger.WithError(err).WithField("keyword", keyword).Error("Failed to parse news feed")
		return nil
	}

	items := feed.Channel.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		source := item.Source
		if source == "" {
			source = "Google News"
		}
		out = append(out, models.NewsItem{
			Title:     item.Title,
			Link:      item.Link,
			Source:    source,
			Published: formatPubDate(item.PubDate),
		})
	}
	return out
}

// formatPubDate normalizes the RSS timestamp; unparseable dates pass through.
func formatPubDate(pubDate string) string {
	t, err := time.Parse("Mon, 02 Jan 2006 15:04:05 MST", pubDate)
	if err != nil {
		return pubDate
	}
	return t.Format("2006-01-02 15:04")
}
