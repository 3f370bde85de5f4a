package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded around every statement.
type Metrics struct {
	Queries  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. Collectors
// that are already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "db",
			Name:      "queries_total",
			Help:      "Statements executed, by strategy, operation and outcome.",
		}, []string{"strategy", "op", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Statement latency, by strategy and operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy", "op"}),
	}

	queries, err := register(reg, m.Queries)
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, m.Duration)
	if err != nil {
		return nil, err
	}
	m.Queries, m.Duration = queries, duration
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// instrumented records metrics around another handle.
type instrumented struct {
	DB
	metrics *Metrics
}

// Instrument wraps db so every statement is counted and timed.
func Instrument(db DB, reg prometheus.Registerer) (DB, error) {
	m, err := NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	return &instrumented{DB: db, metrics: m}, nil
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	strategy := string(i.Strategy())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	i.metrics.Queries.WithLabelValues(strategy, op, outcome).Inc()
	i.metrics.Duration.WithLabelValues(strategy, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Query(ctx context.Context, q Descriptor) ([]Row, error) {
	start := time.Now()
	rows, err := i.DB.Query(ctx, q)
	i.observe("query", start, err)
	return rows, err
}

func (i *instrumented) QueryColumns(ctx context.Context, q Descriptor) ([]string, []Row, error) {
	start := time.Now()
	cols, rows, err := QueryColumns(ctx, i.DB, q)
	i.observe("query", start, err)
	return cols, rows, err
}

func (i *instrumented) Exec(ctx context.Context, q Descriptor) (Result, error) {
	start := time.Now()
	res, err := i.DB.Exec(ctx, q)
	i.observe("exec", start, err)
	return res, err
}

func (i *instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := i.DB.Ping(ctx)
	i.observe("ping", start, err)
	return err
}

func (i *instrumented) sessionDB(ctx context.Context) (*sql.DB, func() error, error) {
	return sessionFor(ctx, i.DB)
}
