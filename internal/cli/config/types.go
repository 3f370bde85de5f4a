// Package config loads the storefront configuration.
//
// Values are layered with koanf, lowest precedence first: built-in
// defaults, storefront.yaml, the platform variables DATABASE_URL and
// APP_ENV, STOREFRONT_* variables, and explicitly set CLI flags.
package config

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/database"
)

// Config holds all storefront configuration options.
type Config struct {
	Environment string         `koanf:"environment"`
	Database    DatabaseConfig `koanf:"database"`
	Server      ServerConfig   `koanf:"server"`
	Payments    PaymentsConfig `koanf:"payments"`
	Log         LogConfig      `koanf:"log"`
	Verbose     bool           `koanf:"verbose"`
	Output      string         `koanf:"output"`
}

// DatabaseConfig configures the connection handle.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
	HTTPEndpoint    string        `koanf:"http_endpoint"`
	HTTPTimeout     time.Duration `koanf:"http_timeout"`
}

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	SessionSecret   string        `koanf:"session_secret"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	PageCacheTTL    time.Duration `koanf:"page_cache_ttl"`
}

// PaymentsConfig configures the cart provider.
type PaymentsConfig struct {
	PublishableKey string `koanf:"publishable_key"`
	Currency       string `koanf:"currency"`
	SuccessURL     string `koanf:"success_url"`
	CancelURL      string `koanf:"cancel_url"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default configuration values.
const (
	DefaultEnv             = "development"
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultOutput          = "table"
	DefaultMaxConns        = 10
	DefaultMinConns        = 1
	DefaultShutdownTimeout = 10 * time.Second
	DefaultPageCacheTTL    = 30 * time.Second
	DefaultSessionSecret   = "storefront-dev-session-secret"
)

// IsProduction reports whether the deployment mode is production.
func (c *Config) IsProduction() bool {
	return c.Environment == database.ProductionEnvironment
}

// DatabaseOptions builds the options database.Open needs.
func (c *Config) DatabaseOptions(logger *slog.Logger, reg prometheus.Registerer) database.Options {
	return database.Options{
		Environment: c.Environment,
		URL:         c.Database.URL,
		Pool: database.PoolOptions{
			MaxConns:        c.Database.MaxConns,
			MinConns:        c.Database.MinConns,
			MaxConnLifetime: c.Database.MaxConnLifetime,
			MaxConnIdleTime: c.Database.MaxConnIdleTime,
		},
		HTTP: database.HTTPOptions{
			Endpoint: c.Database.HTTPEndpoint,
			Timeout:  c.Database.HTTPTimeout,
		},
		Logger:     logger,
		Registerer: reg,
	}
}

// CartSettings returns the operator-supplied cart provider settings.
func (c *Config) CartSettings() cart.Settings {
	return cart.Settings{
		PublishableKey: c.Payments.PublishableKey,
		Currency:       c.Payments.Currency,
		SuccessURL:     c.Payments.SuccessURL,
		CancelURL:      c.Payments.CancelURL,
	}
}
