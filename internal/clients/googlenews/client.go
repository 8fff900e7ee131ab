// Package googlenews searches the Google News RSS feed.
package googlenews

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/clients"
	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

const (
	// DefaultURL is the Google News RSS search endpoint
	DefaultURL = "https://news.google.com/rss/search"

	defaultSource = "Google News"
)

// Client searches Google News and caches results in client data.
type Client struct {
	url       string
	http      *clients.HTTP
	parser    *gofeed.Parser
	cacheRepo *clientdata.Repository
	now       func() time.Time
	log       zerolog.Logger
}

// NewClient creates a Google News client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(feedURL string, cacheRepo *clientdata.Repository, log zerolog.Logger, opts ...clients.Option) *Client {
	if feedURL == "" {
		feedURL = DefaultURL
	}
	l := log.With().Str("client", "googlenews").Logger()

	return &Client{
		url:       feedURL,
		http:      clients.NewHTTP(l, opts...),
		parser:    gofeed.NewParser(),
		cacheRepo: cacheRepo,
		now:       time.Now,
		log:       l,
	}
}

// Search returns news items mentioning query in feed order.
// If the feed fails, returns stale cached items if available (stale data > no data).
func (c *Client) Search(ctx context.Context, query string) ([]domain.NewsItem, error) {
	key := utils.NormalizeKey(query)

	if items, ok := c.fromCache(ctx, key, true); ok {
		c.log.Debug().Str("query", key).Msg("News cache hit")
		return items, nil
	}

	items, err := c.fetch(ctx, query)
	if err != nil {
		if stale, ok := c.fromCache(ctx, key, false); ok {
			c.log.Warn().Err(err).Str("query", key).Msg("News feed failed, using stale cached data")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(ctx, clientdata.TableNewsItems, key, items, clientdata.TTLNews); err != nil {
			c.log.Warn().Err(err).Str("query", key).Msg("Failed to cache news items")
		}
	}

	return items, nil
}

func (c *Client) fetch(ctx context.Context, query string) ([]domain.NewsItem, error) {
	params := url.Values{
		"q":    {query},
		"hl":   {"en-US"},
		"gl":   {"US"},
		"ceid": {"US:en"},
	}

	body, err := c.http.Get(ctx, c.url, params)
	if err != nil {
		return nil, err
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, c.toNewsItem(entry))
	}
	return items, nil
}

func (c *Client) toNewsItem(entry *gofeed.Item) domain.NewsItem {
	title, source := splitTitle(entry.Title)

	id := entry.GUID
	if id == "" {
		id = entry.Link
	}

	published := c.now().UTC()
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.UTC()
	} else if entry.UpdatedParsed != nil {
		published = entry.UpdatedParsed.UTC()
	}

	return domain.NewsItem{
		ID:             id,
		Title:          title,
		Source:         source,
		URL:            entry.Link,
		PublishedAt:    published,
		Sentiment:      domain.ToneNeutral,
		RelatedTickers: []string{},
	}
}

// splitTitle separates Google News' "Headline - Publisher" title form
func splitTitle(raw string) (title, source string) {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndex(raw, " - "); i > 0 {
		if src := strings.TrimSpace(raw[i+3:]); src != "" {
			return strings.TrimSpace(raw[:i]), src
		}
	}
	return raw, defaultSource
}

func (c *Client) fromCache(ctx context.Context, key string, freshOnly bool) ([]domain.NewsItem, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	var items []domain.NewsItem
	var found bool
	var err error
	if freshOnly {
		found, err = c.cacheRepo.GetIfFresh(ctx, clientdata.TableNewsItems, key, &items)
	} else {
		found, err = c.cacheRepo.Get(ctx, clientdata.TableNewsItems, key, &items)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("query", key).Msg("Failed to read news cache")
		return nil, false
	}
	return items, found
}
