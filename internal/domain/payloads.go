package domain

import "time"

// Trend is the direction label of a sentiment score
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// TrendFor derives a trend from an overall score: up above 50, down below 40
func TrendFor(overall int) Trend {
	switch {
	case overall > 50:
		return TrendUp
	case overall < 40:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// Sentiment is an aggregate sentiment reading for a person or topic.
// Scores run 0-100 with 50 as neutral.
type Sentiment struct {
	Trend    Trend `json:"trend"`
	Overall  int   `json:"overall"`
	Reddit   int   `json:"reddit"`
	News     int   `json:"news"`
	Mentions int   `json:"mentions"`
}

// Tone labels a single news item or post
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// NewsItem is a news article mentioning a query
type NewsItem struct {
	PublishedAt    time.Time `json:"published_at" msgpack:"published_at"`
	ID             string    `json:"id" msgpack:"id"`
	Title          string    `json:"title" msgpack:"title"`
	Source         string    `json:"source" msgpack:"source"`
	URL            string    `json:"url" msgpack:"url"`
	Sentiment      Tone      `json:"sentiment" msgpack:"sentiment"`
	RelatedTickers []string  `json:"related_tickers" msgpack:"related_tickers"`
}

// RedditPost is a Reddit submission mentioning a query
type RedditPost struct {
	CreatedAt   time.Time `json:"created_at" msgpack:"created_at"`
	ID          string    `json:"id" msgpack:"id"`
	Title       string    `json:"title" msgpack:"title"`
	Subreddit   string    `json:"subreddit" msgpack:"subreddit"`
	Author      string    `json:"author" msgpack:"author"`
	URL         string    `json:"url" msgpack:"url"`
	Sentiment   Tone      `json:"sentiment" msgpack:"sentiment"`
	Score       int       `json:"score" msgpack:"score"`
	NumComments int       `json:"num_comments" msgpack:"num_comments"`
}

// TradeSide is buy or sell
type TradeSide string

const (
	TradeBuy  TradeSide = "buy"
	TradeSell TradeSide = "sell"
)

// Trade is a disclosed congressional transaction
type Trade struct {
	ID        string    `json:"id"`
	Person    string    `json:"person"`
	Ticker    string    `json:"ticker"`
	Company   string    `json:"company"`
	Type      TradeSide `json:"type"`
	Amount    string    `json:"amount"`
	Date      string    `json:"date"`
	FiledDate string    `json:"filed_date"`
}

// Holding is an estimated position derived from purchase disclosures
type Holding struct {
	Ticker        string  `json:"ticker"`
	Company       string  `json:"company"`
	Value         string  `json:"value"`
	Sector        string  `json:"sector"`
	ChangePercent float64 `json:"change_percent"`
}

// SectorSlice is one slice of a holdings sector breakdown
type SectorSlice struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Value float64 `json:"value"` // percentage of holdings, one decimal
	Count int     `json:"count"`
}

// PriceBar is one daily OHLCV bar. Time holds the date as YYYY-MM-DD.
type PriceBar struct {
	Time   string  `json:"time" msgpack:"time"`
	Open   float64 `json:"open" msgpack:"open"`
	High   float64 `json:"high" msgpack:"high"`
	Low    float64 `json:"low" msgpack:"low"`
	Close  float64 `json:"close" msgpack:"close"`
	Volume int64   `json:"volume" msgpack:"volume"`
}
