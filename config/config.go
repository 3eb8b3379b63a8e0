package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	HTTPAddr    string `env:"HTTP_ADDR"            env-default:":8080"`
	CORSOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"*"`

	Transport      string        `env:"TRANSPORT"       env-default:"http"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT"    env-default:"15s"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" env-default:"3"`
	RateLimitMs    int           `env:"RATE_LIMIT_MS"   env-default:"0"`
	MaxRetries     int           `env:"MAX_RETRIES"     env-default:"2"`
	MaxOrderPages  int           `env:"MAX_ORDER_PAGES" env-default:"20"`

	ESIBaseURL         string `env:"ESI_BASE_URL"         env-default:"https://esi.evetech.net"`
	FuzzworkBaseURL    string `env:"FUZZWORK_BASE_URL"    env-default:"https://www.fuzzwork.co.uk"`
	FuzzworkMarketURL  string `env:"FUZZWORK_MARKET_URL"  env-default:"https://market.fuzzwork.co.uk"`
	EVEMarketerBaseURL string `env:"EVEMARKETER_BASE_URL" env-default:"https://api.evemarketer.com"`
	SearchLanguage     string `env:"SEARCH_LANGUAGE"      env-default:"en"`

	// The Forge / Jita IV - Moon 4 - Caldari Navy Assembly Plant / Jita.
	MarketRegion int64 `env:"MARKET_REGION" env-default:"10000002"`
	HubStation   int64 `env:"HUB_STATION"   env-default:"60003760"`
	HubSystem    int64 `env:"HUB_SYSTEM"    env-default:"30000142"`

	CacheSize       int  `env:"CACHE_SIZE"       env-default:"4096"`
	StrictFreshness bool `env:"STRICT_FRESHNESS" env-default:"false"`

	CSVOutputPath string `env:"CSV_OUTPUT_PATH" env-default:""`
	SQLitePath    string `env:"SQLITE_PATH"     env-default:""`

	PostgresHost     string `env:"POSTGRES_HOST"     env-default:""`
	PostgresPort     string `env:"POSTGRES_PORT"     env-default:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     env-default:"m3calc"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" env-default:""`
	PostgresDB       string `env:"POSTGRES_DB"       env-default:"m3calc"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE"  env-default:"disable"`

	ChromeBin string `env:"CHROME_BIN" env-default:""`
}

// Load reads the .env file (if any) and returns a populated, validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and normalises enum-like fields.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case "http", "browser":
	default:
		return fmt.Errorf("TRANSPORT must be http or browser, got %q", c.Transport)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be >= 1, got %d", c.MaxConcurrency)
	}
	if c.MaxOrderPages < 1 {
		return fmt.Errorf("MAX_ORDER_PAGES must be >= 1, got %d", c.MaxOrderPages)
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	if c.RateLimitMs < 0 {
		return fmt.Errorf("RATE_LIMIT_MS must be >= 0, got %d", c.RateLimitMs)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("CACHE_SIZE must be >= 1, got %d", c.CacheSize)
	}
	return nil
}

// PostgresEnabled reports whether a Postgres sink was configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// AllowedOrigins splits CORSOrigins on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
