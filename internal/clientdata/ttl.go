package clientdata

import "time"

// TTL constants for different data types.
// These are added to now when storing to calculate expires_at.
const (
	// The persisted trades snapshot is a stale fallback across restarts,
	// so it outlives the in-memory window by a wide margin.
	TTLTradesSnapshot = 7 * 24 * time.Hour

	TTLNews        = 15 * time.Minute
	TTLRedditPosts = 15 * time.Minute
	TTLStockPrices = 15 * time.Minute
)
