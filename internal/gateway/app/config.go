package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Credential store the gateway brokers against.
	UpstreamBaseURL string        `env:"UPSTREAM_BASE_URL" envDefault:"http://localhost:8000"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// Session cookie lifetimes and attributes. Cookies are Secure outside dev.
	AccessCookieTTL  time.Duration `env:"ACCESS_COOKIE_TTL" envDefault:"24h"`
	RefreshCookieTTL time.Duration `env:"REFRESH_COOKIE_TTL" envDefault:"168h"`
	CookieSameSite   string        `env:"COOKIE_SAMESITE" envDefault:"lax"`

	// Federated login state.
	OIDCNonceTTL      time.Duration `env:"OIDC_NONCE_TTL" envDefault:"10m"`
	NonceStoreDriver  string        `env:"NONCE_STORE" envDefault:"memory"`
	NonceDatabaseFile string        `env:"NONCE_DATABASE_FILE" envDefault:"gateway.db"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// Shared secret for the revalidation webhook; empty disables it.
	RevalidationSecret string `env:"REVALIDATION_SECRET"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	switch cfg.NonceStoreDriver {
	case "memory", "sqlite":
	default:
		return Config{}, fmt.Errorf("unknown nonce store driver %q", cfg.NonceStoreDriver)
	}

	return cfg, nil
}

// CookiesSecure reports whether session cookies should carry the Secure
// attribute. Only plain-HTTP local development goes without it.
func (c Config) CookiesSecure() bool {
	return c.Env != "dev"
}

// SameSite maps the configured cookie policy to its http constant.
func (c Config) SameSite() http.SameSite {
	switch strings.ToLower(c.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
