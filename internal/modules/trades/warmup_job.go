package trades

import (
	"context"

	"github.com/rs/zerolog"
)

// WarmupJob refreshes the trades cache ahead of expiry so requests rarely wait on upstream.
type WarmupJob struct {
	cache *Cache
	log   zerolog.Logger
}

// NewWarmupJob creates a trades warm-up job
func NewWarmupJob(cache *Cache, log zerolog.Logger) *WarmupJob {
	return &WarmupJob{
		cache: cache,
		log:   log.With().Str("job", "trades_warmup").Logger(),
	}
}

// Run refreshes the dataset. Failures are absorbed by the cache's fallbacks.
func (j *WarmupJob) Run() error {
	state := j.cache.Refresh(context.Background())

	j.log.Info().
		Str("source", state.Source).
		Int("count", state.Count).
		Time("expires_at", state.ExpiresAt).
		Msg("Trades cache warmed")
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *WarmupJob) Name() string {
	return "trades_warmup"
}
