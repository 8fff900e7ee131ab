package trades

import "strings"

// SectorOther is assigned to tickers without a known sector
const SectorOther = "Other"

var tickerSectors = map[string]string{
	"AAPL":  "Technology",
	"MSFT":  "Technology",
	"GOOGL": "Technology",
	"NVDA":  "Technology",
	"META":  "Technology",
	"AMZN":  "Consumer Cyclical",
	"TSLA":  "Automotive",
	"JPM":   "Financial",
	"BAC":   "Financial",
	"WFC":   "Financial",
	"JNJ":   "Healthcare",
	"PFE":   "Healthcare",
	"UNH":   "Healthcare",
	"XOM":   "Energy",
	"CVX":   "Energy",
}

// sectorColors are the dashboard's sector chart colours
var sectorColors = map[string]string{
	"Technology":  "#00d4aa",
	"Healthcare":  "#00b894",
	"Financial":   "#0984e3",
	"Energy":      "#fdcb6e",
	"Consumer":    "#e17055",
	"Industrial":  "#6c5ce7",
	"Materials":   "#00cec9",
	"Utilities":   "#fab1a0",
	"Real Estate": "#74b9ff",
	SectorOther:   "#636e72",
}

// SectorOf maps a ticker to its sector
func SectorOf(ticker string) string {
	if s, ok := tickerSectors[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		return s
	}
	return SectorOther
}

// colorOf picks a chart colour, matching on the sector's leading word
// so "Consumer Cyclical" shares the Consumer colour.
func colorOf(sector string) string {
	if c, ok := sectorColors[sector]; ok {
		return c
	}
	if head, _, ok := strings.Cut(sector, " "); ok {
		if c, ok := sectorColors[head]; ok {
			return c
		}
	}
	return sectorColors[SectorOther]
}
