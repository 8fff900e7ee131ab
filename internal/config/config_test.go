package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.StoreBackend)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 12, cfg.GridColumns)
	assert.Equal(t, WidgetIDSequence, cfg.WidgetIDStyle)
	assert.Equal(t, 10*time.Second, cfg.Providers.UpstreamTimeout)
	assert.Equal(t, 30*time.Second, cfg.Providers.TradesTimeout)
	assert.Equal(t, time.Hour, cfg.Providers.TradesCacheTTL)
	assert.True(t, cfg.Providers.NewsEnabled)
	assert.False(t, cfg.Providers.RedditEnabled)
	assert.True(t, cfg.Providers.YahooEnabled)
	assert.False(t, cfg.Providers.LiveSentiment)
	assert.Equal(t, "@hourly", cfg.Jobs.CacheCleanupSchedule)
	assert.Equal(t, "@every 55m", cfg.Jobs.TradesWarmupSchedule)
	assert.Equal(t, "0 3 * * *", cfg.Jobs.MaintenanceSchedule)
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.False(t, cfg.Backup.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")
	t.Setenv("GRID_COLUMNS", "16")
	t.Setenv("WIDGET_ID_STYLE", "random")
	t.Setenv("UPSTREAM_TIMEOUT", "2s")
	t.Setenv("REDDIT_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 16, cfg.GridColumns)
	assert.Equal(t, WidgetIDRandom, cfg.WidgetIDStyle)
	assert.Equal(t, 2*time.Second, cfg.Providers.UpstreamTimeout)
	assert.True(t, cfg.Providers.RedditEnabled)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("PORT", "not-a-number")
	t.Setenv("TRADES_TIMEOUT", "forever")
	t.Setenv("NEWS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.Providers.TradesTimeout)
	assert.True(t, cfg.Providers.NewsEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:          8000,
			StoreBackend:  StoreSQLite,
			GridColumns:   12,
			WidgetIDStyle: WidgetIDSequence,
			Providers: ProvidersConfig{
				UpstreamTimeout: time.Second,
				TradesTimeout:   time.Second,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "invalid PORT"},
		{name: "bad backend", mutate: func(c *Config) { c.StoreBackend = "postgres" }, wantErr: "STORE_BACKEND"},
		{name: "bad id style", mutate: func(c *Config) { c.WidgetIDStyle = "short" }, wantErr: "WIDGET_ID_STYLE"},
		{name: "zero columns", mutate: func(c *Config) { c.GridColumns = 0 }, wantErr: "GRID_COLUMNS"},
		{name: "zero timeout", mutate: func(c *Config) { c.Providers.UpstreamTimeout = 0 }, wantErr: "timeouts"},
		{
			name:    "backup without bucket",
			mutate:  func(c *Config) { c.Backup.Enabled = true },
			wantErr: "BACKUP_BUCKET",
		},
		{
			name: "backup with memory store",
			mutate: func(c *Config) {
				c.StoreBackend = StoreMemory
				c.Backup = BackupConfig{Enabled: true, Bucket: "b", AccessKeyID: "k", SecretAccessKey: "s"}
			},
			wantErr: "STORE_BACKEND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
