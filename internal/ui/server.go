// Package ui serves the storefront's server-rendered pages.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/storefront/internal/actions"
	"github.com/leapstack-labs/storefront/internal/cart"
	"github.com/leapstack-labs/storefront/internal/database"
	"github.com/leapstack-labs/storefront/internal/store"
	"github.com/leapstack-labs/storefront/internal/ui/notifier"
	"github.com/leapstack-labs/storefront/internal/ui/router"
)

// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
const DefaultShutdownTimeout = 10 * time.Second

// Server is the storefront HTTP server.
type Server struct {
	db              database.DB
	store           *store.Store
	actions         *actions.Authors
	sessionStore    *sessions.CookieStore
	notifier        *notifier.Notifier
	cart            cart.ProviderConfig
	gatherer        prometheus.Gatherer
	addr            string
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	DB              database.DB
	Cart            cart.ProviderConfig
	Gatherer        prometheus.Gatherer
	Host            string
	Port            int
	SessionSecret   string
	SecureCookies   bool
	ShutdownTimeout time.Duration
	// PageCacheTTL expires cached list renders. Zero keeps them until
	// invalidated, which is only safe with a single instance.
	PageCacheTTL    time.Duration
	Logger          *slog.Logger
}

// NewServer creates a new server over cfg.DB.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.SecureCookies
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	st := store.New(cfg.DB, logger)
	notify := notifier.New(notifier.WithTTL(cfg.PageCacheTTL))

	logger.Debug("page cache configured", "ttl", cfg.PageCacheTTL)

	return &Server{
		db:              cfg.DB,
		store:           st,
		actions:         actions.NewAuthors(st, notify, logger),
		sessionStore:    sessionStore,
		notifier:        notify,
		cart:            cfg.Cart,
		gatherer:        cfg.Gatherer,
		addr:            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		shutdownTimeout: timeout,
		logger:          logger,
	}
}

// Handler builds the router with middleware and all feature routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, router.Deps{
		DB:           s.db,
		Store:        s.store,
		Actions:      s.actions,
		SessionStore: s.sessionStore,
		Notifier:     s.notifier,
		Cart:         s.cart,
		Gatherer:     s.gatherer,
		Logger:       s.logger,
	}); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln, handler)
}

func (s *Server) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	s.logger.Info("starting server",
		"addr", "http://"+ln.Addr().String(),
		"strategy", s.db.Strategy(),
	)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}
