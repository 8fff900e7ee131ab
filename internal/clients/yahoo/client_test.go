package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnjoon/go-yfinance/pkg/models"

	"github.com/aristath/portfolio-tracker/internal/clientdata"
	testingpkg "github.com/aristath/portfolio-tracker/internal/testing"
)

func sampleBars() []models.Bar {
	return []models.Bar{
		{Date: time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), Open: 100, High: 105, Low: 99, Close: 104, Volume: 1200000},
		{Date: time.Date(2024, 1, 3, 14, 30, 0, 0, time.UTC), Open: 104, High: 106, Low: 101, Close: 102, Volume: 900000},
	}
}

func TestGetHistoricalPrices_MapsBars(t *testing.T) {
	var gotSymbol, gotPeriod string
	c := NewClient(time.Second, nil, zerolog.Nop()).WithHistoryFunc(func(symbol, period string) ([]models.Bar, error) {
		gotSymbol, gotPeriod = symbol, period
		return sampleBars(), nil
	})

	bars, err := c.GetHistoricalPrices(context.Background(), " aapl ", "")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", gotSymbol)
	assert.Equal(t, DefaultPeriod, gotPeriod)

	require.Len(t, bars, 2)
	assert.Equal(t, "2024-01-02", bars[0].Time)
	assert.Equal(t, 104.0, bars[0].Close)
	assert.Equal(t, int64(1200000), bars[0].Volume)
	assert.Equal(t, "2024-01-03", bars[1].Time)
}

func TestGetHistoricalPrices_Errors(t *testing.T) {
	c := NewClient(time.Second, nil, zerolog.Nop()).WithHistoryFunc(func(string, string) ([]models.Bar, error) {
		return nil, errors.New("boom")
	})
	_, err := c.GetHistoricalPrices(context.Background(), "AAPL", "1mo")
	assert.EqualError(t, err, "boom")

	c.WithHistoryFunc(func(string, string) ([]models.Bar, error) { return nil, nil })
	_, err = c.GetHistoricalPrices(context.Background(), "AAPL", "1mo")
	assert.Error(t, err)
}

func TestGetHistoricalPrices_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := NewClient(20*time.Millisecond, nil, zerolog.Nop()).WithHistoryFunc(func(string, string) ([]models.Bar, error) {
		<-release
		return sampleBars(), nil
	})

	start := time.Now()
	_, err := c.GetHistoricalPrices(context.Background(), "AAPL", "1mo")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGetHistoricalPrices_CacheAndStale(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "client_data")
	defer cleanup()
	cache := clientdata.NewRepository(db.Conn())

	calls := 0
	fail := false
	c := NewClient(time.Second, cache, zerolog.Nop()).WithHistoryFunc(func(string, string) ([]models.Bar, error) {
		calls++
		if fail {
			return nil, errors.New("yahoo down")
		}
		return sampleBars(), nil
	})
	ctx := context.Background()

	first, err := c.GetHistoricalPrices(ctx, "MSFT", "1mo")
	require.NoError(t, err)

	_, err = c.GetHistoricalPrices(ctx, "msft", "1mo")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, cache.Store(ctx, clientdata.TableStockPrices, "MSFT:1mo", first, -time.Minute))
	fail = true

	stale, err := c.GetHistoricalPrices(ctx, "MSFT", "1mo")
	require.NoError(t, err)
	assert.Equal(t, first, stale)
	assert.Equal(t, 2, calls)
}
