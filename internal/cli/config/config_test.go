package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets variables the loader reads so the host environment does
// not leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name := strings.SplitN(kv, "=", 2)[0]
		if strings.HasPrefix(name, EnvPrefix) || platformEnv[name] != "" {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("env", "", "")
	fs.String("database-url", "", "")
	fs.String("log-level", "", "")
	fs.Int("port", 0, "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("format", "table", "")
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultEnv, cfg.Environment)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, int32(DefaultMaxConns), cfg.Database.MaxConns)
	assert.Equal(t, time.Hour, cfg.Database.MaxConnLifetime)
	assert.Equal(t, 15*time.Second, cfg.Database.HTTPTimeout)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.PageCacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "USD", cfg.Payments.Currency)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
environment: staging
database:
  url: postgres://file@db/app
  max_conns: 4
server:
  port: 9000
log:
  level: warn
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "staging", cfg.Environment)
		assert.Equal(t, "postgres://file@db/app", cfg.Database.URL)
		assert.Equal(t, int32(4), cfg.Database.MaxConns)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, path, GetConfigFileUsed())
	})

	t.Run("platform env overrides file", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://platform@db/app")
		t.Setenv("APP_ENV", "production")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "postgres://platform@db/app", cfg.Database.URL)
	})

	t.Run("empty platform env is ignored", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://file@db/app", cfg.Database.URL)
	})

	t.Run("prefixed env overrides platform env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://platform@db/app")
		t.Setenv("STOREFRONT_DATABASE__URL", "postgres://prefixed@db/app")
		t.Setenv("STOREFRONT_DATABASE__MAX_CONNS", "25")
		t.Setenv("STOREFRONT_LOG__LEVEL", "ERROR")

		cfg, err := LoadConfig(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "postgres://prefixed@db/app", cfg.Database.URL)
		assert.Equal(t, int32(25), cfg.Database.MaxConns)
		assert.Equal(t, "error", cfg.Log.Level)
	})

	t.Run("explicit flags override everything", func(t *testing.T) {
		t.Setenv("STOREFRONT_DATABASE__URL", "postgres://prefixed@db/app")
		t.Setenv("STOREFRONT_ENVIRONMENT", "production")

		fs := newFlagSet()
		require.NoError(t, fs.Parse([]string{"--database-url", "sqlite::memory:", "--env", "test", "--port", "7000"}))

		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "sqlite::memory:", cfg.Database.URL)
		assert.Equal(t, "test", cfg.Environment)
		assert.Equal(t, 7000, cfg.Server.Port)
	})

	t.Run("unset flags do not override", func(t *testing.T) {
		fs := newFlagSet()
		require.NoError(t, fs.Parse(nil))

		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "staging", cfg.Environment)
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		fs := newFlagSet()
		require.NoError(t, fs.Parse([]string{"-v"}))

		cfg, err := LoadConfig(path, fs)
		require.NoError(t, err)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, "debug", cfg.Log.Level)
	})
}

func TestLoadConfig_ExpandsEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PGPASSWORD_TEST", "s3cret")
	path := writeConfig(t, `
database:
  url: postgres://app:${PGPASSWORD_TEST}@db/app
payments:
  publishable_key: ${MISSING_KEY_TEST}
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:s3cret@db/app", cfg.Database.URL)
	assert.Equal(t, "${MISSING_KEY_TEST}", cfg.Payments.PublishableKey)
}

func TestLoadConfig_BadFile(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	path := writeConfig(t, "database: [unterminated")
	_, err = LoadConfig(path, nil)
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Environment: "development",
		Database:    DatabaseConfig{URL: "sqlite::memory:", MaxConns: 5, MinConns: 1},
		Server:      ServerConfig{Port: 8080},
		Payments:    PaymentsConfig{Currency: "USD"},
		Log:         LogConfig{Level: "info", Format: "text"},
		Output:      "table",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.Database.URL = "" }, errSubstr: "database.url is required"},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, errSubstr: "server.port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, errSubstr: "server.port"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, errSubstr: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, errSubstr: "log.format"},
		{name: "bad output", mutate: func(c *Config) { c.Output = "yaml" }, errSubstr: "output"},
		{name: "min above max", mutate: func(c *Config) { c.Database.MinConns = 9 }, errSubstr: "min_conns"},
		{name: "negative page cache ttl", mutate: func(c *Config) { c.Server.PageCacheTTL = -time.Second }, errSubstr: "page_cache_ttl"},
		{name: "bad currency", mutate: func(c *Config) { c.Payments.Currency = "QQQ" }, errSubstr: "currency"},
		{
			name: "production without publishable key",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Database.URL = "postgres://app@ep.neon.tech/app"
			},
			errSubstr: "publishable_key",
		},
		{
			name: "production with default session secret",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Payments.PublishableKey = "pk_live_123"
				c.Server.SessionSecret = DefaultSessionSecret
			},
			errSubstr: "session_secret",
		},
		{
			name: "production with publishable key",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.Payments.PublishableKey = "pk_live_123"
				c.Server.SessionSecret = "a-real-secret-from-the-vault"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_DatabaseOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = "production"
	cfg.Database.HTTPEndpoint = "https://proxy.local/sql"
	cfg.Database.HTTPTimeout = 3 * time.Second

	opts := cfg.DatabaseOptions(nil, nil)
	assert.Equal(t, "production", opts.Environment)
	assert.Equal(t, "sqlite::memory:", opts.URL)
	assert.Equal(t, int32(5), opts.Pool.MaxConns)
	assert.Equal(t, "https://proxy.local/sql", opts.HTTP.Endpoint)
	assert.Equal(t, 3*time.Second, opts.HTTP.Timeout)
	assert.True(t, cfg.IsProduction())
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := NewLogger(LogConfig{Level: "debug", Format: "json"}, os.Stderr)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, loggerKey{}, LoggerKey())
}

func TestFromContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	cfg := validConfig()
	assert.Same(t, cfg, FromContext(WithConfig(context.Background(), cfg)))
}
