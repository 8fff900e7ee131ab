// Package reddit searches public Reddit posts through the search JSON endpoint.
package reddit

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/clients"
	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

const (
	// DefaultURL is the anonymous Reddit search endpoint
	DefaultURL = "https://www.reddit.com/search.json"

	// DefaultUserAgent identifies the tracker; Reddit throttles generic agents hard
	DefaultUserAgent = "portfolio-tracker/1.0 (by /u/portfolio-tracker)"

	baseURL = "https://reddit.com"

	// maxLimit is the most posts Reddit returns per search page
	maxLimit = 100
)

type searchResponse struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Permalink   string  `json:"permalink"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

// Client searches Reddit and caches results in client data.
type Client struct {
	url       string
	http      *clients.HTTP
	cacheRepo *clientdata.Repository
	log       zerolog.Logger
}

// NewClient creates a Reddit search client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(searchURL, userAgent string, cacheRepo *clientdata.Repository, log zerolog.Logger, opts ...clients.Option) *Client {
	if searchURL == "" {
		searchURL = DefaultURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	l := log.With().Str("client", "reddit").Logger()

	opts = append([]clients.Option{clients.WithUserAgent(userAgent)}, opts...)

	return &Client{
		url:       searchURL,
		http:      clients.NewHTTP(l, opts...),
		cacheRepo: cacheRepo,
		log:       l,
	}
}

// Search returns up to limit of the newest posts mentioning query.
// If Reddit fails, returns stale cached posts if available.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.RedditPost, error) {
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}
	key := utils.NormalizeKey(query) + ":" + strconv.Itoa(limit)

	if posts, ok := c.fromCache(ctx, key, true); ok {
		c.log.Debug().Str("key", key).Msg("Reddit cache hit")
		return posts, nil
	}

	posts, err := c.fetch(ctx, query, limit)
	if err != nil {
		if stale, ok := c.fromCache(ctx, key, false); ok {
			c.log.Warn().Err(err).Str("key", key).Msg("Reddit search failed, using stale cached data")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(ctx, clientdata.TableRedditPosts, key, posts, clientdata.TTLRedditPosts); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache reddit posts")
		}
	}

	return posts, nil
}

func (c *Client) fetch(ctx context.Context, query string, limit int) ([]domain.RedditPost, error) {
	params := url.Values{
		"q":     {query},
		"sort":  {"new"},
		"limit": {strconv.Itoa(limit)},
	}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.url, params, &resp); err != nil {
		return nil, err
	}

	posts := make([]domain.RedditPost, 0, len(resp.Data.Children))
	for _, child := range resp.Data.Children {
		p := child.Data
		if p.ID == "" {
			continue
		}
		posts = append(posts, domain.RedditPost{
			ID:          p.ID,
			Title:       p.Title,
			Subreddit:   p.Subreddit,
			Author:      p.Author,
			URL:         baseURL + p.Permalink,
			Score:       p.Score,
			NumComments: p.NumComments,
			CreatedAt:   time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Sentiment:   domain.ToneNeutral,
		})
	}
	return posts, nil
}

func (c *Client) fromCache(ctx context.Context, key string, freshOnly bool) ([]domain.RedditPost, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	var posts []domain.RedditPost
	var found bool
	var err error
	if freshOnly {
		found, err = c.cacheRepo.GetIfFresh(ctx, clientdata.TableRedditPosts, key, &posts)
	} else {
		found, err = c.cacheRepo.Get(ctx, clientdata.TableRedditPosts, key, &posts)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read reddit cache")
		return nil, false
	}
	return posts, found
}
