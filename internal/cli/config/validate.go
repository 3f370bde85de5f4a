package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/storefront/internal/cart"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
	validOutputs    = []string{"table", "json", "csv", "markdown", "md"}
)

// Validate checks the configuration needed to serve traffic.
// Every problem found is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Database.URL) == "" {
		errs = append(errs, errors.New("database.url is required (set DATABASE_URL or --database-url)"))
	}
	if c.Database.MinConns < 0 || c.Database.MaxConns < 0 {
		errs = append(errs, errors.New("database pool bounds must not be negative"))
	}
	if c.Database.MaxConns > 0 && c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Errorf("database.min_conns (%d) exceeds database.max_conns (%d)", c.Database.MinConns, c.Database.MaxConns))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Server.PageCacheTTL < 0 {
		errs = append(errs, errors.New("server.page_cache_ttl must not be negative"))
	}
	if !oneOf(c.Log.Level, validLogLevels) {
		errs = append(errs, fmt.Errorf("log.level must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if !oneOf(c.Log.Format, validLogFormats) {
		errs = append(errs, fmt.Errorf("log.format must be one of %s", strings.Join(validLogFormats, ", ")))
	}
	if !oneOf(c.Output, validOutputs) {
		errs = append(errs, fmt.Errorf("output must be one of %s", strings.Join(validOutputs, ", ")))
	}
	if c.IsProduction() && (c.Server.SessionSecret == "" || c.Server.SessionSecret == DefaultSessionSecret) {
		errs = append(errs, errors.New("server.session_secret must be set in production"))
	}
	if _, err := cart.NewProviderConfig(c.CartSettings(), c.IsProduction()); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
