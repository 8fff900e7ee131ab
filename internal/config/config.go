// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/portfolio-tracker/internal/utils"
)

// Store backends
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Widget id styles
const (
	WidgetIDSequence = "sequence"
	WidgetIDRandom   = "random"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for databases (always absolute)
	Port           int
	LogLevel       string
	DevMode        bool
	StoreBackend   string   // sqlite or memory
	AllowedOrigins []string // CORS origins; ["*"] allows all
	GridColumns    int
	WidgetIDStyle  string

	Providers ProvidersConfig
	Jobs      JobsConfig
	Backup    BackupConfig
}

// ProvidersConfig configures the third-party data sources
type ProvidersConfig struct {
	UpstreamTimeout time.Duration // Bound for news, reddit, stock price calls
	TradesTimeout   time.Duration // Bound for the full trades dataset download
	TradesCacheTTL  time.Duration
	TradesSourceURL string
	NewsEnabled     bool
	NewsFeedURL     string
	RedditEnabled   bool
	RedditUserAgent string
	YahooEnabled    bool
	LiveSentiment   bool
}

// JobsConfig holds cron schedules for background jobs
type JobsConfig struct {
	CacheCleanupSchedule string
	TradesWarmupSchedule string
	MaintenanceSchedule  string
}

// BackupConfig configures uploads of the portfolio database to S3-compatible storage
type BackupConfig struct {
	Enabled         bool
	Endpoint        string // Empty uses the AWS default endpoint resolution
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string
	RetentionDays   int // 0 keeps every backup
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	origins := utils.ParseCSV(getEnv("ALLOWED_ORIGINS", "*"))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 8000),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		StoreBackend:   getEnv("STORE_BACKEND", StoreSQLite),
		AllowedOrigins: origins,
		GridColumns:    getEnvAsInt("GRID_COLUMNS", 12),
		WidgetIDStyle:  getEnv("WIDGET_ID_STYLE", WidgetIDSequence),
		Providers: ProvidersConfig{
			UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			TradesTimeout:   getEnvAsDuration("TRADES_TIMEOUT", 30*time.Second),
			TradesCacheTTL:  getEnvAsDuration("TRADES_CACHE_TTL", time.Hour),
			TradesSourceURL: getEnv("TRADES_SOURCE_URL", "https://house-stock-watcher-data.s3-us-west-2.amazonaws.com/data/all_transactions.json"),
			NewsEnabled:     getEnvAsBool("NEWS_ENABLED", true),
			NewsFeedURL:     getEnv("NEWS_FEED_URL", "https://news.google.com/rss/search"),
			RedditEnabled:   getEnvAsBool("REDDIT_ENABLED", false),
			RedditUserAgent: getEnv("REDDIT_USER_AGENT", "portfolio-tracker/1.0"),
			YahooEnabled:    getEnvAsBool("YAHOO_ENABLED", true),
			LiveSentiment:   getEnvAsBool("LIVE_SENTIMENT", false),
		},
		Jobs: JobsConfig{
			CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "@hourly"),
			TradesWarmupSchedule: getEnv("TRADES_WARMUP_SCHEDULE", "@every 55m"),
			MaintenanceSchedule:  getEnv("MAINTENANCE_SCHEDULE", "0 3 * * *"),
		},
		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
			Region:          getEnv("BACKUP_REGION", "auto"),
			Bucket:          getEnv("BACKUP_BUCKET", ""),
			AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
			Schedule:        getEnv("BACKUP_SCHEDULE", "@daily"),
			RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configuration values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.StoreBackend {
	case StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (want %s or %s)", c.StoreBackend, StoreSQLite, StoreMemory)
	}

	switch c.WidgetIDStyle {
	case WidgetIDSequence, WidgetIDRandom:
	default:
		return fmt.Errorf("invalid WIDGET_ID_STYLE %q (want %s or %s)", c.WidgetIDStyle, WidgetIDSequence, WidgetIDRandom)
	}

	if c.GridColumns <= 0 {
		return fmt.Errorf("GRID_COLUMNS must be positive, got %d", c.GridColumns)
	}

	if c.Providers.UpstreamTimeout <= 0 || c.Providers.TradesTimeout <= 0 {
		return fmt.Errorf("upstream timeouts must be positive")
	}

	if c.Backup.Enabled {
		if c.Backup.Bucket == "" || c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("BACKUP_ENABLED requires BACKUP_BUCKET, BACKUP_ACCESS_KEY_ID and BACKUP_SECRET_ACCESS_KEY")
		}
		if c.StoreBackend != StoreSQLite {
			return fmt.Errorf("backups require STORE_BACKEND=%s", StoreSQLite)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
