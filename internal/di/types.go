// Package di wires databases, clients, services and jobs into one container.
package di

import (
	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/clients/googlenews"
	"github.com/aristath/portfolio-tracker/internal/clients/housestockwatcher"
	"github.com/aristath/portfolio-tracker/internal/clients/reddit"
	"github.com/aristath/portfolio-tracker/internal/clients/yahoo"
	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/aristath/portfolio-tracker/internal/modules/portfolio"
	"github.com/aristath/portfolio-tracker/internal/modules/sentiment"
	"github.com/aristath/portfolio-tracker/internal/modules/trades"
	"github.com/aristath/portfolio-tracker/internal/reliability"
	"github.com/aristath/portfolio-tracker/internal/scheduler"
)

// Container holds every long-lived dependency. It is built by Wire and handed to the server.
type Container struct {
	// Databases. PortfolioDB is nil with the memory store backend.
	PortfolioDB  *database.DB
	ClientDataDB *database.DB

	// Repositories
	PortfolioRepo  portfolio.Repository
	ClientDataRepo *clientdata.Repository

	// Upstream clients, nil when disabled
	HouseClient  *housestockwatcher.Client
	NewsClient   *googlenews.Client
	RedditClient *reddit.Client
	YahooClient  *yahoo.Client

	// Services
	PortfolioService *portfolio.Service
	SentimentService *sentiment.Service
	TradesCache      *trades.Cache
	TradesService    *trades.Service
	BackupService    *reliability.BackupService // nil unless backups are enabled

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	if c.PortfolioDB != nil {
		dbs = append(dbs, c.PortfolioDB)
	}
	if c.ClientDataDB != nil {
		dbs = append(dbs, c.ClientDataDB)
	}
	return dbs
}

// Close closes every open database
func (c *Container) Close() error {
	var firstErr error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// JobInstances holds references to registered jobs for manual triggering
type JobInstances struct {
	CacheCleanup scheduler.Job
	TradesWarmup scheduler.Job
	Maintenance  scheduler.Job
	Backup       scheduler.Job // nil unless backups are enabled
}
