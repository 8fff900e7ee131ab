package trades

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/portfolio-tracker/internal/domain"
)

const mockPriceDays = 30

// mockPriceBars builds a random walk over the 30 days before now. The walk is
// seeded by symbol and calendar day, so it is stable within a day.
func mockPriceBars(symbol string, now time.Time) []domain.PriceBar {
	day := now.UTC().Truncate(24 * time.Hour)

	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	_, _ = h.Write([]byte(day.Format("2006-01-02")))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	price := uniform(50, 500)
	bars := make([]domain.PriceBar, 0, mockPriceDays)
	for i := 0; i < mockPriceDays; i++ {
		date := day.AddDate(0, 0, i-mockPriceDays)

		open := price * (1 + uniform(-0.03, 0.03))
		high := open * (1 + uniform(0, 0.02))
		low := open * (1 - uniform(0, 0.02))
		closePrice := uniform(low, high)

		bars = append(bars, domain.PriceBar{
			Time:   date.Format("2006-01-02"),
			Open:   cents(open),
			High:   cents(high),
			Low:    cents(low),
			Close:  cents(closePrice),
			Volume: 1_000_000 + rng.Int63n(49_000_000),
		})

		price = closePrice
	}
	return bars
}

func cents(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
