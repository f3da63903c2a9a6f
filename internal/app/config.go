package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (BOOKS_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (BOOKS_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	RedisURL    string `default:"redis://localhost:6379/0" usage:"Redis connection URL for the catalog cache" flag:"redis-url"`
	BooksAPIURL string `default:"https://www.googleapis.com/books/v1" usage:"Upstream volumes API base URL" flag:"books-api-url"`
	CacheTTL    time.Duration `default:"10m" usage:"Catalog cache entry lifetime" flag:"cache-ttl"`

	// The catalog degrades to the local table when the upstream is down, so
	// deployments that rely on the fallback can opt out of this probe.
	UpstreamCheck bool `default:"true" usage:"Probe the upstream volumes API as a readiness check" flag:"upstream-check"`

	AccessTokenKey  string `usage:"HMAC key for access tokens (BOOKS_ACCESS_TOKEN_KEY)" flag:"access-token-key"`
	RefreshTokenKey string `usage:"HMAC key for refresh tokens (BOOKS_REFRESH_TOKEN_KEY)" flag:"refresh-token-key"`

	SMTP      SMTPConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// SMTPConfig holds verification mail delivery settings.
type SMTPConfig struct {
	Host     string `usage:"SMTP server host"`
	Port     int    `default:"587" usage:"SMTP server port"`
	User     string `usage:"SMTP username"`
	Password string `usage:"SMTP password"`
	From     string `default:"noreply@bookshelf.local" usage:"From address for outgoing mail"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BOOKS",
		Files:     []string{"config.yaml", "/etc/bookshelf/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set BOOKS_DATABASE_URL or DATABASE_URL")
	}
	if cfg.AccessTokenKey == "" || cfg.RefreshTokenKey == "" {
		return nil, errors.New("token keys are required: set BOOKS_ACCESS_TOKEN_KEY and BOOKS_REFRESH_TOKEN_KEY")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's BOOKS_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" && c.RedisURL == "redis://localhost:6379/0" {
		c.RedisURL = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
