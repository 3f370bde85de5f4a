package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/storefront/internal/cli/config"
	"github.com/leapstack-labs/storefront/internal/database"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg    *config.Config
	Logger *slog.Logger
	DB     database.DB
}

// NewCommandContext validates the configuration and opens the database
// handle. The returned cleanup closes the handle and must be called
// (typically via defer).
func NewCommandContext(cmd *cobra.Command, reg prometheus.Registerer) (*CommandContext, func(), error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger := config.GetLogger(cmd.Context())

	db, err := database.Open(cmd.Context(), cfg.DatabaseOptions(logger, reg))
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		DB:     db,
	}, cleanup, nil
}

// NewCommandContextWithoutDB creates a CommandContext without a database
// handle, for commands that only inspect configuration.
func NewCommandContextWithoutDB(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:    cfg,
		Logger: config.GetLogger(cmd.Context()),
	}, nil
}

// getConfig returns the configuration the root command loaded, loading it
// from defaults and the environment when the command runs standalone.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg, nil
	}
	return config.LoadConfig("", cmd.Flags())
}

// outputFormat resolves a command-local --format flag against the global
// output setting.
func outputFormat(cmd *cobra.Command, local string, cfg *config.Config) string {
	if cmd.Flags().Changed("format") || cfg == nil || cfg.Output == "" {
		return local
	}
	return cfg.Output
}
