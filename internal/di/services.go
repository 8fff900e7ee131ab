package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/clients"
	"github.com/aristath/portfolio-tracker/internal/clients/googlenews"
	"github.com/aristath/portfolio-tracker/internal/clients/housestockwatcher"
	"github.com/aristath/portfolio-tracker/internal/clients/reddit"
	"github.com/aristath/portfolio-tracker/internal/clients/yahoo"
	"github.com/aristath/portfolio-tracker/internal/config"
	"github.com/aristath/portfolio-tracker/internal/modules/layout"
	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
	"github.com/aristath/portfolio-tracker/internal/modules/sentiment"
	"github.com/aristath/portfolio-tracker/internal/modules/trades"
	"github.com/aristath/portfolio-tracker/internal/reliability"
	"github.com/aristath/portfolio-tracker/internal/scheduler"
)

// InitializeServices creates clients and services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.PortfolioRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}
	providers := cfg.Providers

	// Portfolio store
	container.PortfolioService = portfolio.NewService(
		container.PortfolioRepo,
		layout.NewEngine(cfg.GridColumns),
		log,
		portfolio.WithWidgetIDs(portfolio.NewWidgetIDGenerator(cfg.WidgetIDStyle)),
	)

	// Sentiment, news, Reddit
	sentimentOpts := []sentiment.Option{sentiment.WithLiveScoring(providers.LiveSentiment)}
	if providers.NewsEnabled {
		container.NewsClient = googlenews.NewClient(
			providers.NewsFeedURL,
			container.ClientDataRepo,
			log,
			clients.WithTimeout(providers.UpstreamTimeout),
		)
		sentimentOpts = append(sentimentOpts, sentiment.WithNews(container.NewsClient))
	}
	if providers.RedditEnabled {
		container.RedditClient = reddit.NewClient(
			"",
			providers.RedditUserAgent,
			container.ClientDataRepo,
			log,
			clients.WithTimeout(providers.UpstreamTimeout),
			clients.WithRateLimit(1),
		)
		sentimentOpts = append(sentimentOpts, sentiment.WithReddit(container.RedditClient))
	}
	container.SentimentService = sentiment.NewService(log, sentimentOpts...)

	// Trades
	container.HouseClient = housestockwatcher.NewClient(
		providers.TradesSourceURL,
		log,
		clients.WithTimeout(providers.TradesTimeout),
	)
	container.TradesCache = trades.NewCache(
		container.HouseClient,
		log,
		trades.WithStore(container.ClientDataRepo),
		trades.WithTTL(providers.TradesCacheTTL),
		trades.WithTimeout(providers.TradesTimeout),
	)

	var prices trades.PriceSource
	if providers.YahooEnabled {
		container.YahooClient = yahoo.NewClient(providers.UpstreamTimeout, container.ClientDataRepo, log)
		prices = container.YahooClient
	}
	container.TradesService = trades.NewService(container.TradesCache, prices, log)

	// Backups
	if cfg.Backup.Enabled {
		store, err := reliability.NewS3Store(context.Background(), cfg.Backup, log)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize backup storage - backups disabled")
		} else {
			container.BackupService = reliability.NewBackupService(store, container.Databases(), cfg.DataDir, log)
			log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backup service initialized")
		}
	}

	container.Scheduler = scheduler.New(log)

	return nil
}
