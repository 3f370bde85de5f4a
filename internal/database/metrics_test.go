package database_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/storefront/internal/database"
)

func prometheusRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func TestInstrument_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	reg := prometheusRegistry()

	base, err := database.Open(ctx, database.Options{URL: ":memory:"})
	require.NoError(t, err)
	defer base.Close()

	db, err := database.Instrument(base, reg)
	require.NoError(t, err)

	_, err = db.Query(ctx, database.Raw("SELECT 1"))
	require.NoError(t, err)
	_, err = db.Query(ctx, database.Raw("SELECT * FROM missing_table"))
	require.Error(t, err)
	require.NoError(t, db.Ping(ctx))

	m, err := database.NewMetrics(reg)
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(m.Queries.WithLabelValues("pooled", "query", "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Queries.WithLabelValues("pooled", "query", "error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Queries.WithLabelValues("pooled", "ping", "ok")))
	assert.Equal(t, 2, promtest.CollectAndCount(m.Duration))
}

func TestNewMetrics_ReusesRegistered(t *testing.T) {
	reg := prometheusRegistry()

	first, err := database.NewMetrics(reg)
	require.NoError(t, err)
	second, err := database.NewMetrics(reg)
	require.NoError(t, err)

	assert.Same(t, first.Queries, second.Queries)
	assert.Same(t, first.Duration, second.Duration)
}

func TestInstrument_QueryColumns(t *testing.T) {
	ctx := context.Background()
	reg := prometheusRegistry()

	base, err := database.Open(ctx, database.Options{URL: ":memory:"})
	require.NoError(t, err)
	defer base.Close()

	db, err := database.Instrument(base, reg)
	require.NoError(t, err)

	cols, rows, err := database.QueryColumns(ctx, db, database.Raw("SELECT 'b' AS zeta, 1 AS alpha"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha"}, cols)
	require.Len(t, rows, 1)

	m, err := database.NewMetrics(reg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, promtest.ToFloat64(m.Queries.WithLabelValues("pooled", "query", "ok")))
}
