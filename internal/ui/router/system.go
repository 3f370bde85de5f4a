package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leapstack-labs/storefront/internal/database"
)

const healthTimeout = 2 * time.Second

// Health is the /healthz response body.
type Health struct {
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
	Dialect  string `json:"dialect"`
	Error    string `json:"error,omitempty"`
}

func setupSystem(router chi.Router, db database.DB, gatherer prometheus.Gatherer) {
	router.Get("/healthz", healthHandler(db))
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

// healthHandler pings the database handle. It reports 503 when the ping
// fails so load balancers stop routing to the instance.
func healthHandler(db database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		h := Health{
			Status:   "ok",
			Strategy: string(db.Strategy()),
			Dialect:  db.Dialect().Name,
		}
		status := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			h.Status = "unavailable"
			h.Error = err.Error()
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(h)
	}
}
