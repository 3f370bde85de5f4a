package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Migrate bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront web server",
		Long: `Start the storefront web server.

The database connection strategy is chosen once at startup from the
environment: "production" talks to Postgres over HTTP one request per
query, anything else keeps a pool of connections open.`,
		Example: `  # Serve locally against SQLite, creating the schema first
  storefront serve --database-url sqlite://storefront.db --migrate

  # Serve on a custom port
  storefront serve --port 3000

  # Production
  APP_ENV=production DATABASE_URL=postgres://... storefront serve --host 0.0.0.0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 8080)")
	cmd.Flags().String("host", "", "Interface to bind (default: 127.0.0.1)")
	cmd.Flags().BoolVar(&opts.Migrate, "migrate", false, "Run pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	cmdCtx, cleanup, err := NewCommandContext(cmd, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger

	if opts.Migrate {
		if err := migrateUp(cmd, cmdCtx); err != nil {
			return err
		}
	}

	cartConfig, err := cart.NewProviderConfig(cfg.CartSettings(), cfg.IsProduction())
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		DB:              cmdCtx.DB,
		Cart:            cartConfig,
		Gatherer:        reg,
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		SessionSecret:   cfg.Server.SessionSecret,
		SecureCookies:   cfg.IsProduction(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		PageCacheTTL:    cfg.Server.PageCacheTTL,
		Logger:          logger,
	})

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (%s strategy)\n", server.Addr(), cmdCtx.DB.Strategy())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl+C to stop")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
