// Package yahoo fetches daily price history from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	"github.com/aristath/portfolio-tracker/internal/domain"
)

// DefaultPeriod is the history window used when none is given
const DefaultPeriod = "1mo"

// HistoryFunc loads daily bars for a Yahoo symbol and period
type HistoryFunc func(symbol, period string) ([]models.Bar, error)

// Client wraps go-yfinance with a per-call timeout and client data caching.
type Client struct {
	history   HistoryFunc
	cacheRepo *clientdata.Repository
	timeout   time.Duration
	log       zerolog.Logger
}

// NewClient creates a Yahoo Finance client.
// cacheRepo is optional - if nil, caching is disabled.
func NewClient(timeout time.Duration, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		history:   fetchHistory,
		cacheRepo: cacheRepo,
		timeout:   timeout,
		log:       log.With().Str("client", "yahoo").Logger(),
	}
}

// WithHistoryFunc replaces the upstream loader (used by tests).
func (c *Client) WithHistoryFunc(fn HistoryFunc) *Client {
	c.history = fn
	return c
}

func fetchHistory(symbol, period string) ([]models.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	params := models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	}

	bars, err := t.History(params)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}
	return bars, nil
}

// GetHistoricalPrices returns daily bars for symbol over period, oldest first.
// If Yahoo fails, returns stale cached bars if available.
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol, period string) ([]domain.PriceBar, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" {
		period = DefaultPeriod
	}
	key := symbol + ":" + period

	if bars, ok := c.fromCache(ctx, key, true); ok {
		c.log.Debug().Str("key", key).Msg("Price cache hit")
		return bars, nil
	}

	bars, err := c.fetch(ctx, symbol, period)
	if err != nil {
		if stale, ok := c.fromCache(ctx, key, false); ok {
			c.log.Warn().Err(err).Str("key", key).Msg("Yahoo history failed, using stale cached data")
			return stale, nil
		}
		return nil, err
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store(ctx, clientdata.TableStockPrices, key, bars, clientdata.TTLStockPrices); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("Failed to cache price history")
		}
	}

	return bars, nil
}

type historyResult struct {
	bars []models.Bar
	err  error
}

// fetch runs the blocking go-yfinance call off the caller's goroutine so ctx and
// the client timeout can abandon it.
func (c *Client) fetch(ctx context.Context, symbol, period string) ([]domain.PriceBar, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan historyResult, 1)
	go func() {
		bars, err := c.history(symbol, period)
		done <- historyResult{bars: bars, err: err}
	}()

	var res historyResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("price history for %s: %w", symbol, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, res.err
	}
	if len(res.bars) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	out := make([]domain.PriceBar, 0, len(res.bars))
	for _, bar := range res.bars {
		out = append(out, domain.PriceBar{
			Time:   bar.Date.UTC().Format("2006-01-02"),
			Open:   bar.Open,
			High:   bar.High,
			Low:    bar.Low,
			Close:  bar.Close,
			Volume: int64(bar.Volume),
		})
	}
	return out, nil
}

func (c *Client) fromCache(ctx context.Context, key string, freshOnly bool) ([]domain.PriceBar, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	var bars []domain.PriceBar
	var found bool
	var err error
	if freshOnly {
		found, err = c.cacheRepo.GetIfFresh(ctx, clientdata.TableStockPrices, key, &bars)
	} else {
		found, err = c.cacheRepo.Get(ctx, clientdata.TableStockPrices, key, &bars)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to read price cache")
		return nil, false
	}
	return bars, found
}
