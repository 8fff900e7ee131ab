// Package housestockwatcher fetches the House Stock Watcher congressional trades dataset.
package housestockwatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/clients"
)

const (
	// DefaultURL serves every disclosed House transaction as one JSON array
	DefaultURL = "https://house-stock-watcher-data.s3-us-west-2.amazonaws.com/data/all_transactions.json"

	// DefaultTimeout covers downloading the full dataset
	DefaultTimeout = 30 * time.Second
)

// Transaction is one raw disclosure record. Only string fields are decoded.
type Transaction struct {
	Representative   string `json:"representative" msgpack:"representative"`
	Ticker           string `json:"ticker" msgpack:"ticker"`
	AssetDescription string `json:"asset_description" msgpack:"asset_description"`
	Type             string `json:"type" msgpack:"type"`
	Amount           string `json:"amount" msgpack:"amount"`
	TransactionDate  string `json:"transaction_date" msgpack:"transaction_date"`
	DisclosureDate   string `json:"disclosure_date" msgpack:"disclosure_date"`
	Owner            string `json:"owner" msgpack:"owner"`
	District         string `json:"district" msgpack:"district"`
	PTRLink          string `json:"ptr_link" msgpack:"ptr_link"`
}

// Client downloads the transactions dataset.
type Client struct {
	url  string
	http *clients.HTTP
	log  zerolog.Logger
}

// NewClient creates a client for the dataset at url (DefaultURL when empty).
func NewClient(url string, log zerolog.Logger, opts ...clients.Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	l := log.With().Str("client", "housestockwatcher").Logger()

	return &Client{
		url:  url,
		http: clients.NewHTTP(l, append([]clients.Option{clients.WithTimeout(DefaultTimeout)}, opts...)...),
		log:  l,
	}
}

// FetchTransactions downloads every transaction in dataset order.
func (c *Client) FetchTransactions(ctx context.Context) ([]Transaction, error) {
	var txs []Transaction
	if err := c.http.GetJSON(ctx, c.url, nil, &txs); err != nil {
		return nil, err
	}

	c.log.Debug().Int("count", len(txs)).Msg("Fetched transactions")
	return txs, nil
}
