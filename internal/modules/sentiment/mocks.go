package sentiment

import (
	"fmt"
	"time"

	"github.com/aristath/portfolio-tracker/internal/domain"
)

// knownSentiment holds the fixed scores served for tracked people, keyed by normalized name.
// The tuples are returned as stored; their trend is not recomputed.
var knownSentiment = map[string]domain.Sentiment{
	"nancy pelosi":   {Overall: 45, Reddit: 38, News: 52, Trend: domain.TrendUp, Mentions: 1247},
	"dan crenshaw":   {Overall: 62, Reddit: 58, News: 66, Trend: domain.TrendUp, Mentions: 892},
	"warren buffett": {Overall: 78, Reddit: 82, News: 74, Trend: domain.TrendNeutral, Mentions: 2341},
	"ray dalio":      {Overall: 55, Reddit: 48, News: 62, Trend: domain.TrendDown, Mentions: 567},
}

// NeutralSentiment is served for anyone without a score
var NeutralSentiment = domain.Sentiment{
	Overall:  50,
	Reddit:   50,
	News:     50,
	Trend:    domain.TrendNeutral,
	Mentions: 100,
}

func mockNews(query string, now time.Time) []domain.NewsItem {
	return []domain.NewsItem{
		{
			ID:             "news1",
			Title:          fmt.Sprintf("%s Makes Headlines With New Investment Strategy", query),
			Source:         "Financial Times",
			URL:            "https://example.com/news1",
			PublishedAt:    now.Add(-1 * time.Hour),
			Sentiment:      domain.TonePositive,
			RelatedTickers: []string{"AAPL", "MSFT", "NVDA"},
		},
		{
			ID:             "news2",
			Title:          fmt.Sprintf("Market Watch: %s's Portfolio Changes Analyzed", query),
			Source:         "Bloomberg",
			URL:            "https://example.com/news2",
			PublishedAt:    now.Add(-3 * time.Hour),
			Sentiment:      domain.ToneNeutral,
			RelatedTickers: []string{"TSLA", "AMZN"},
		},
		{
			ID:             "news3",
			Title:          fmt.Sprintf("Experts React to %s's Recent Disclosures", query),
			Source:         "Reuters",
			URL:            "https://example.com/news3",
			PublishedAt:    now.Add(-6 * time.Hour),
			Sentiment:      domain.TonePositive,
			RelatedTickers: []string{"GOOGL", "META"},
		},
	}
}

func mockReddit(query string, now time.Time) []domain.RedditPost {
	post := func(id, title, sub, author string, score, comments int, age time.Duration, tone domain.Tone) domain.RedditPost {
		return domain.RedditPost{
			ID:          id,
			Title:       title,
			Subreddit:   sub,
			Author:      author,
			URL:         fmt.Sprintf("https://reddit.com/r/%s/comments/%s", sub, id),
			Score:       score,
			NumComments: comments,
			CreatedAt:   now.Add(-age),
			Sentiment:   tone,
		}
	}

	return []domain.RedditPost{
		post("abc123", fmt.Sprintf("Discussion about %s's latest trades", query),
			"wallstreetbets", "trader_joe", 1542, 234, 2*time.Hour, domain.TonePositive),
		post("def456", fmt.Sprintf("What do you think about %s?", query),
			"stocks", "market_watcher", 856, 156, 5*time.Hour, domain.ToneNeutral),
		post("ghi789", fmt.Sprintf("Breaking: %s makes major move", query),
			"investing", "finance_guru", 2103, 412, 8*time.Hour, domain.TonePositive),
	}
}
