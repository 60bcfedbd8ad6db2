package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// SourceConfig carries the per-source knobs for one upstream site.
type SourceConfig struct {
	BaseURL    string
	BaseDelay  time.Duration
	JitterFrac float64
	MaxRetries int
	MaxBackoff time.Duration
}

type Config struct {
	DBPath string

	Wiki SourceConfig
	Vlr  SourceConfig
	Bo3  SourceConfig

	// The wiki's action API enforces a hard minimum between expensive
	// render calls, independent of the HTML fetch budget.
	WikiAPIURL        string
	WikiRenderDelay   time.Duration
	WikiSearchDelay   time.Duration
	WikiAPIMaxRetries int

	EnrichmentURL    string
	EnrichmentAPIKey string

	// Development-only escape hatch for sources behind broken TLS
	// interception. Never enable in production.
	InsecureSkipTLSVerify bool
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DBPath: getEnv("DB_PATH", "oracle.db"),
		Wiki: SourceConfig{
			BaseURL:    getEnv("WIKI_BASE_URL", "https://liquipedia.net"),
			BaseDelay:  getDuration("WIKI_BASE_DELAY", 4*time.Second),
			JitterFrac: getFloat("WIKI_JITTER_FRAC", 0.2),
			MaxRetries: getInt("WIKI_MAX_RETRIES", 3),
			MaxBackoff: getDuration("WIKI_MAX_BACKOFF", 60*time.Second),
		},
		Vlr: SourceConfig{
			BaseURL:    getEnv("VLR_BASE_URL", "https://www.vlr.gg"),
			BaseDelay:  getDuration("VLR_BASE_DELAY", 2*time.Second),
			JitterFrac: getFloat("VLR_JITTER_FRAC", 0.2),
			MaxRetries: getInt("VLR_MAX_RETRIES", 3),
			MaxBackoff: getDuration("VLR_MAX_BACKOFF", 60*time.Second),
		},
		Bo3: SourceConfig{
			BaseURL:    getEnv("BO3_BASE_URL", "https://bo3.gg"),
			BaseDelay:  getDuration("BO3_BASE_DELAY", 2*time.Second),
			JitterFrac: getFloat("BO3_JITTER_FRAC", 0.2),
			MaxRetries: getInt("BO3_MAX_RETRIES", 3),
			MaxBackoff: getDuration("BO3_MAX_BACKOFF", 60*time.Second),
		},
		WikiAPIURL:            getEnv("WIKI_API_URL", "https://liquipedia.net/valorant/api.php"),
		WikiRenderDelay:       getDuration("WIKI_RENDER_DELAY", 30*time.Second),
		WikiSearchDelay:       getDuration("WIKI_SEARCH_DELAY", 2*time.Second),
		WikiAPIMaxRetries:     getInt("WIKI_API_MAX_RETRIES", 2),
		EnrichmentURL:         getEnv("ENRICHMENT_URL", ""),
		EnrichmentAPIKey:      getEnv("ENRICHMENT_API_KEY", ""),
		InsecureSkipTLSVerify: getEnv("INSECURE_SKIP_TLS_VERIFY", "") == "true",
	}

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("DB_PATH must not be empty")
	}
	for _, sc := range []SourceConfig{cfg.Wiki, cfg.Vlr, cfg.Bo3} {
		if sc.BaseDelay <= 0 || sc.MaxRetries <= 0 {
			return nil, fmt.Errorf("source delays and retry budgets must be positive")
		}
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("wiki_base_url", cfg.Wiki.BaseURL).
		Str("vlr_base_url", cfg.Vlr.BaseURL).
		Str("bo3_base_url", cfg.Bo3.BaseURL).
		Bool("enrichment_enabled", cfg.EnrichmentURL != "").
		Bool("insecure_tls", cfg.InsecureSkipTLSVerify).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
