package trades

import "github.com/aristath/portfolio-tracker/internal/clients/housestockwatcher"

// mockTransactions is served when neither upstream nor a persisted snapshot is available.
func mockTransactions() []housestockwatcher.Transaction {
	return []housestockwatcher.Transaction{
		{
			Representative:   "Nancy Pelosi",
			Ticker:           "NVDA",
			AssetDescription: "NVIDIA Corporation",
			Type:             "purchase",
			Amount:           "$1,000,001 - $5,000,000",
			TransactionDate:  "2024-01-15",
			DisclosureDate:   "2024-01-20",
		},
		{
			Representative:   "Dan Crenshaw",
			Ticker:           "MSFT",
			AssetDescription: "Microsoft Corporation",
			Type:             "purchase",
			Amount:           "$15,001 - $50,000",
			TransactionDate:  "2024-01-12",
			DisclosureDate:   "2024-01-18",
		},
		{
			Representative:   "Nancy Pelosi",
			Ticker:           "AAPL",
			AssetDescription: "Apple Inc.",
			Type:             "sale_full",
			Amount:           "$250,001 - $500,000",
			TransactionDate:  "2024-01-10",
			DisclosureDate:   "2024-01-16",
		},
		{
			Representative:   "Tommy Tuberville",
			Ticker:           "GOOGL",
			AssetDescription: "Alphabet Inc.",
			Type:             "purchase",
			Amount:           "$100,001 - $250,000",
			TransactionDate:  "2024-01-08",
			DisclosureDate:   "2024-01-14",
		},
		{
			Representative:   "Mark Green",
			Ticker:           "TSLA",
			AssetDescription: "Tesla, Inc.",
			Type:             "sale_full",
			Amount:           "$50,001 - $100,000",
			TransactionDate:  "2024-01-05",
			DisclosureDate:   "2024-01-12",
		},
	}
}
