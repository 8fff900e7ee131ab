// Package sentiment serves sentiment scores, news and Reddit posts about tracked people.
package sentiment

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

const (
	DefaultNewsLimit   = 10
	DefaultRedditLimit = 10

	// liveSampleSize is how many items per source feed the live score
	liveSampleSize = 25
)

// NewsSource searches news articles
type NewsSource interface {
	Search(ctx context.Context, query string) ([]domain.NewsItem, error)
}

// RedditSource searches Reddit posts
type RedditSource interface {
	Search(ctx context.Context, query string, limit int) ([]domain.RedditPost, error)
}

// Service answers sentiment lookups. Upstream failures never reach callers;
// every lookup degrades to mock data.
type Service struct {
	news   NewsSource   // nil when disabled
	reddit RedditSource // nil when disabled
	live   bool
	now    func() time.Time
	log    zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithNews enables live news lookups
func WithNews(src NewsSource) Option {
	return func(s *Service) { s.news = src }
}

// WithReddit enables live Reddit lookups
func WithReddit(src RedditSource) Option {
	return func(s *Service) { s.reddit = src }
}

// WithLiveScoring scores unknown people from live items instead of returning the neutral default
func WithLiveScoring(enabled bool) Option {
	return func(s *Service) { s.live = enabled }
}

// WithClock overrides the time source for mock timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a sentiment service
func NewService(log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		now: time.Now,
		log: log.With().Str("service", "sentiment").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sentiment returns the score for query. Known people get their fixed tuple.
func (s *Service) Sentiment(ctx context.Context, query string) domain.Sentiment {
	if known, ok := knownSentiment[utils.NormalizeKey(query)]; ok {
		return known
	}
	if !s.live {
		return NeutralSentiment
	}

	result, ok := s.liveSentiment(ctx, query)
	if !ok {
		return NeutralSentiment
	}
	return result
}

func (s *Service) liveSentiment(ctx context.Context, query string) (domain.Sentiment, bool) {
	var newsTexts, redditTexts []string
	var sourced bool

	if s.news != nil {
		items, err := s.news.Search(ctx, query)
		if err != nil {
			s.log.Warn().Err(err).Str("query", query).Msg("News lookup failed, skipping for score")
		} else {
			sourced = true
			for i, item := range items {
				if i == liveSampleSize {
					break
				}
				newsTexts = append(newsTexts, item.Title)
			}
		}
	}

	if s.reddit != nil {
		posts, err := s.reddit.Search(ctx, query, liveSampleSize)
		if err != nil {
			s.log.Warn().Err(err).Str("query", query).Msg("Reddit lookup failed, skipping for score")
		} else {
			sourced = true
			for _, p := range posts {
				redditTexts = append(redditTexts, p.Title)
			}
		}
	}

	if !sourced {
		return domain.Sentiment{}, false
	}

	reddit := score(redditTexts)
	news := score(newsTexts)
	overall := (reddit + news) / 2

	return domain.Sentiment{
		Overall:  overall,
		Reddit:   reddit,
		News:     news,
		Trend:    domain.TrendFor(overall),
		Mentions: len(redditTexts) + len(newsTexts),
	}, true
}

// News returns up to limit articles about query, most recent first.
func (s *Service) News(ctx context.Context, query string, limit int) []domain.NewsItem {
	if limit < 0 {
		limit = DefaultNewsLimit
	}

	items := s.liveNews(ctx, query)
	if len(items) == 0 {
		items = mockNews(query, s.now().UTC())
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func (s *Service) liveNews(ctx context.Context, query string) []domain.NewsItem {
	if s.news == nil {
		return nil
	}

	items, err := s.news.Search(ctx, query)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("News lookup failed, serving mock articles")
		return nil
	}

	out := make([]domain.NewsItem, len(items))
	for i, item := range items {
		item.Sentiment = toneOf(item.Title)
		if item.RelatedTickers == nil {
			item.RelatedTickers = []string{}
		}
		out[i] = item
	}
	return out
}

// RedditPosts returns up to limit posts about query in upstream order.
func (s *Service) RedditPosts(ctx context.Context, query string, limit int) []domain.RedditPost {
	if limit < 0 {
		limit = DefaultRedditLimit
	}

	posts := s.liveReddit(ctx, query, limit)
	if len(posts) == 0 {
		posts = mockReddit(query, s.now().UTC())
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

func (s *Service) liveReddit(ctx context.Context, query string, limit int) []domain.RedditPost {
	if s.reddit == nil || limit == 0 {
		return nil
	}

	posts, err := s.reddit.Search(ctx, query, limit)
	if err != nil {
		s.log.Warn().Err(err).Str("query", query).Msg("Reddit lookup failed, serving mock posts")
		return nil
	}

	for i := range posts {
		posts[i].Sentiment = toneOf(posts[i].Title)
	}
	return posts
}
