// Package trades serves congressional trade disclosures, derived holdings and price history.
package trades

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/portfolio-tracker/internal/clients/housestockwatcher"
	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/utils"
)

const (
	DefaultPoliticianLimit = 20
	DefaultRecentLimit     = 50
	DefaultPeriod          = "1mo"

	// MaxHoldings caps the holdings list
	MaxHoldings = 20
)

var dateLayouts = []string{"2006-01-02", "01/02/2006"}

// TransactionSource supplies the raw dataset
type TransactionSource interface {
	Transactions(ctx context.Context) []housestockwatcher.Transaction
}

// PriceSource supplies daily price history
type PriceSource interface {
	GetHistoricalPrices(ctx context.Context, symbol, period string) ([]domain.PriceBar, error)
}

// Service answers trade lookups. It never returns upstream errors.
type Service struct {
	source TransactionSource
	prices PriceSource // nil when live prices are disabled
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a trades service. prices may be nil.
func NewService(source TransactionSource, prices PriceSource, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		prices: prices,
		now:    time.Now,
		log:    log.With().Str("service", "trades").Logger(),
	}
}

// ByPolitician returns up to limit trades whose representative contains name, newest first.
func (s *Service) ByPolitician(ctx context.Context, name string, limit int) []domain.Trade {
	if limit < 0 {
		limit = DefaultPoliticianLimit
	}

	matched := s.matching(ctx, name)
	sortByDateDesc(matched, func(tx housestockwatcher.Transaction) string { return tx.TransactionDate })
	return toTrades(matched, limit)
}

// Recent returns up to limit trades across everyone, most recently disclosed first.
func (s *Service) Recent(ctx context.Context, limit int) []domain.Trade {
	if limit < 0 {
		limit = DefaultRecentLimit
	}

	all := s.source.Transactions(ctx)
	txs := make([]housestockwatcher.Transaction, len(all))
	copy(txs, all)

	sortByDateDesc(txs, func(tx housestockwatcher.Transaction) string { return tx.DisclosureDate })
	return toTrades(txs, limit)
}

// Holdings estimates positions from purchases: first purchase per ticker, at most MaxHoldings.
func (s *Service) Holdings(ctx context.Context, name string) []domain.Holding {
	holdings := make([]domain.Holding, 0)
	seen := make(map[string]struct{})

	for _, tx := range s.matching(ctx, name) {
		ticker := strings.TrimSpace(tx.Ticker)
		if ticker == "" || ticker == "--" || !isPurchase(tx.Type) {
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		holdings = append(holdings, domain.Holding{
			Ticker:        ticker,
			Company:       orDefault(tx.AssetDescription, "Unknown"),
			Value:         orDefault(tx.Amount, "Unknown"),
			Sector:        SectorOf(ticker),
			ChangePercent: 0,
		})
		if len(holdings) == MaxHoldings {
			break
		}
	}
	return holdings
}

// Sectors breaks Holdings(name) down by sector, largest share first.
func (s *Service) Sectors(ctx context.Context, name string) []domain.SectorSlice {
	holdings := s.Holdings(ctx, name)
	slices := make([]domain.SectorSlice, 0)
	if len(holdings) == 0 {
		return slices
	}

	index := make(map[string]int)
	for _, h := range holdings {
		i, ok := index[h.Sector]
		if !ok {
			i = len(slices)
			index[h.Sector] = i
			slices = append(slices, domain.SectorSlice{Name: h.Sector, Color: colorOf(h.Sector)})
		}
		slices[i].Count++
	}

	counts := make([]float64, len(slices))
	for i, sl := range slices {
		counts[i] = float64(sl.Count)
	}
	total := floats.Sum(counts)
	floats.Scale(100/total, counts)

	for i := range slices {
		slices[i].Value, _ = decimal.NewFromFloat(counts[i]).Round(1).Float64()
	}

	sort.SliceStable(slices, func(i, j int) bool {
		return slices[i].Count > slices[j].Count
	})
	return slices
}

// StockPrices returns daily bars for symbol, falling back to a deterministic mock walk.
func (s *Service) StockPrices(ctx context.Context, symbol, period string) []domain.PriceBar {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" {
		period = DefaultPeriod
	}

	if s.prices != nil {
		bars, err := s.prices.GetHistoricalPrices(ctx, symbol, period)
		if err == nil && len(bars) > 0 {
			for i := range bars {
				bars[i].Open = cents(bars[i].Open)
				bars[i].High = cents(bars[i].High)
				bars[i].Low = cents(bars[i].Low)
				bars[i].Close = cents(bars[i].Close)
			}
			return bars
		}
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price history unavailable, serving mock bars")
	}

	return mockPriceBars(symbol, s.now())
}

func (s *Service) matching(ctx context.Context, name string) []housestockwatcher.Transaction {
	needle := utils.NormalizeKey(name)

	var out []housestockwatcher.Transaction
	for _, tx := range s.source.Transactions(ctx) {
		if strings.Contains(strings.ToLower(tx.Representative), needle) {
			out = append(out, tx)
		}
	}
	return out
}

// sortByDateDesc orders newest first; unparsable dates go last, ties keep input order.
func sortByDateDesc(txs []housestockwatcher.Transaction, date func(housestockwatcher.Transaction) string) {
	keys := make(map[int]time.Time, len(txs))
	idx := make([]int, len(txs))
	for i := range txs {
		idx[i] = i
		if t, ok := parseDate(date(txs[i])); ok {
			keys[i] = t
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		ta, okA := keys[idx[a]]
		tb, okB := keys[idx[b]]
		switch {
		case okA && okB:
			return ta.After(tb)
		default:
			return okA && !okB
		}
	})

	sorted := make([]housestockwatcher.Transaction, len(txs))
	for i, j := range idx {
		sorted[i] = txs[j]
	}
	copy(txs, sorted)
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toTrades(txs []housestockwatcher.Transaction, limit int) []domain.Trade {
	if len(txs) > limit {
		txs = txs[:limit]
	}

	out := make([]domain.Trade, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTrade(tx))
	}
	return out
}

func toTrade(tx housestockwatcher.Transaction) domain.Trade {
	side := domain.TradeSell
	if isPurchase(tx.Type) {
		side = domain.TradeBuy
	}

	return domain.Trade{
		ID:        tx.Representative + "-" + tx.TransactionDate + "-" + tx.Ticker,
		Person:    orDefault(tx.Representative, "Unknown"),
		Ticker:    orDefault(tx.Ticker, "N/A"),
		Company:   orDefault(tx.AssetDescription, "Unknown Company"),
		Type:      side,
		Amount:    orDefault(tx.Amount, "Unknown"),
		Date:      tx.TransactionDate,
		FiledDate: tx.DisclosureDate,
	}
}

func isPurchase(txType string) bool {
	return strings.Contains(strings.ToLower(txType), "purchase")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
