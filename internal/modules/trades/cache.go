package trades

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/clients/housestockwatcher"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

const (
	// DefaultCacheTTL is how long a fetched dataset is served before refreshing
	DefaultCacheTTL = time.Hour

	// RetryBackoff delays the next refresh after a failed one
	RetryBackoff = time.Minute

	snapshotKey = "house"
)

// Snapshot sources
const (
	SourceNone      = "none"
	SourceUpstream  = "upstream"
	SourcePersisted = "persisted"
	SourceMock      = "mock"
)

// Fetcher downloads the full transactions dataset
type Fetcher interface {
	FetchTransactions(ctx context.Context) ([]housestockwatcher.Transaction, error)
}

// CacheState describes the current snapshot
type CacheState struct {
	Source    string    `json:"source"`
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cache holds the transactions dataset and refreshes it at most once at a time.
// Callers never see an error: a failed refresh falls back to the previous snapshot,
// then the persisted snapshot, then the built-in mock dataset.
type Cache struct {
	fetcher Fetcher
	store   *clientdata.Repository // optional
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  []housestockwatcher.Transaction
	source    string
	fetchedAt time.Time
	expiresAt time.Time
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithStore persists successful fetches and reads them back when upstream fails
func WithStore(store *clientdata.Repository) CacheOption {
	return func(c *Cache) { c.store = store }
}

// WithTTL sets the snapshot lifetime
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = ttl }
}

// WithTimeout bounds each refresh
func WithTimeout(timeout time.Duration) CacheOption {
	return func(c *Cache) { c.timeout = timeout }
}

// WithCacheClock overrides the time source
func WithCacheClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a trades cache over fetcher
func NewCache(fetcher Fetcher, log zerolog.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     DefaultCacheTTL,
		timeout: housestockwatcher.DefaultTimeout,
		now:     time.Now,
		source:  SourceNone,
		log:     log.With().Str("component", "trades_cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transactions returns the current dataset, refreshing it when expired.
// If ctx ends while a refresh is in flight, the best snapshot at hand is returned
// and the refresh keeps running for later callers.
func (c *Cache) Transactions(ctx context.Context) []housestockwatcher.Transaction {
	if txs, ok := c.fresh(); ok {
		return txs
	}

	ch := c.group.DoChan(snapshotKey, func() (interface{}, error) {
		return c.refresh(), nil
	})

	select {
	case res := <-ch:
		return res.Val.([]housestockwatcher.Transaction)
	case <-ctx.Done():
		c.log.Debug().Err(ctx.Err()).Msg("Caller left during refresh")
		if txs := c.current(); txs != nil {
			return txs
		}
		return mockTransactions()
	}
}

// Refresh forces a refresh, joining one already in flight.
func (c *Cache) Refresh(ctx context.Context) CacheState {
	ch := c.group.DoChan(snapshotKey, func() (interface{}, error) {
		return c.refresh(), nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}
	return c.State()
}

// State reports the snapshot currently held
func (c *Cache) State() CacheState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return CacheState{
		Source:    c.source,
		Count:     len(c.snapshot),
		FetchedAt: c.fetchedAt,
		ExpiresAt: c.expiresAt,
	}
}

func (c *Cache) fresh() ([]housestockwatcher.Transaction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.snapshot == nil || !c.now().Before(c.expiresAt) {
		return nil, false
	}
	return c.snapshot, true
}

func (c *Cache) current() []housestockwatcher.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// refresh runs on its own context so no single caller can cancel it.
func (c *Cache) refresh() []housestockwatcher.Transaction {
	defer utils.OperationTimer("trades_refresh", c.log)()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	start := c.now()
	txs, err := c.fetcher.FetchTransactions(ctx)
	if err == nil && txs != nil {
		c.log.Info().Int("count", len(txs)).Dur("duration", c.now().Sub(start)).Msg("Refreshed trades dataset")
		c.persist(ctx, txs)
		c.set(txs, SourceUpstream, c.ttl)
		return txs
	}
	if err == nil {
		c.log.Warn().Msg("Trades upstream returned no dataset")
	} else {
		c.log.Warn().Err(err).Msg("Trades refresh failed, falling back")
	}

	if prev := c.current(); prev != nil {
		c.mu.Lock()
		c.expiresAt = c.now().Add(c.retryBackoff())
		c.mu.Unlock()
		return prev
	}

	if persisted, ok := c.loadPersisted(ctx); ok {
		c.set(persisted, SourcePersisted, c.retryBackoff())
		return persisted
	}

	mock := mockTransactions()
	c.set(mock, SourceMock, c.retryBackoff())
	return mock
}

func (c *Cache) retryBackoff() time.Duration {
	if c.ttl < RetryBackoff {
		return c.ttl
	}
	return RetryBackoff
}

func (c *Cache) set(txs []housestockwatcher.Transaction, source string, ttl time.Duration) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = txs
	c.source = source
	c.fetchedAt = now
	c.expiresAt = now.Add(ttl)
}

func (c *Cache) persist(ctx context.Context, txs []housestockwatcher.Transaction) {
	if c.store == nil {
		return
	}
	if err := c.store.Store(ctx, clientdata.TableTradesSnapshot, snapshotKey, txs, clientdata.TTLTradesSnapshot); err != nil {
		c.log.Warn().Err(err).Msg("Failed to persist trades snapshot")
	}
}

func (c *Cache) loadPersisted(ctx context.Context) ([]housestockwatcher.Transaction, bool) {
	if c.store == nil {
		return nil, false
	}

	var txs []housestockwatcher.Transaction
	found, err := c.store.Get(ctx, clientdata.TableTradesSnapshot, snapshotKey, &txs)
	if err != nil {
		c.log.Warn().Err(err).Msg("Failed to load persisted trades snapshot")
		return nil, false
	}
	if !found || txs == nil {
		return nil, false
	}

	c.log.Info().Int("count", len(txs)).Msg("Serving persisted trades snapshot")
	return txs, true
}
