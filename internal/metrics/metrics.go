// Package metrics exposes Prometheus collectors for schema migrations and
// data-access constraint violations.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Collector holds the collectors of one process. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	MigrationsTotal      *prometheus.CounterVec
	MigrationDuration    *prometheus.HistogramVec
	DataLossRows         *prometheus.CounterVec
	ConstraintViolations *prometheus.CounterVec
}

// New creates a collector bound to its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		MigrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schema_migrations_total",
				Help: "Schema migrations executed, by direction and result",
			},
			[]string{"migration", "direction", "result"},
		),
		MigrationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schema_migration_duration_seconds",
				Help:    "Duration of a single migration transaction",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"migration", "direction"},
		),
		DataLossRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schema_migration_data_loss_rows_total",
				Help: "Rows whose data was discarded by a migration step",
			},
			[]string{"table", "column"},
		),
		ConstraintViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "data_constraint_violations_total",
				Help: "Writes rejected by a named constraint",
			},
			[]string{"constraint"},
		),
	}
	c.registry.MustRegister(c.MigrationsTotal, c.MigrationDuration, c.DataLossRows, c.ConstraintViolations)
	return c
}

// Registry returns the registry the collectors are registered with.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveMigration records one migration transaction.
func (c *Collector) ObserveMigration(id, direction string, took time.Duration, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.MigrationsTotal.WithLabelValues(id, direction, result).Inc()
	c.MigrationDuration.WithLabelValues(id, direction).Observe(took.Seconds())
}

// ObserveDataLoss records rows discarded from table (and column, if any).
func (c *Collector) ObserveDataLoss(table, column string, rows int64) {
	if c == nil || rows <= 0 {
		return
	}
	c.DataLossRows.WithLabelValues(table, column).Add(float64(rows))
}

// ObserveConstraint records a rejected write.
func (c *Collector) ObserveConstraint(name string) {
	if c == nil || name == "" {
		return
	}
	c.ConstraintViolations.WithLabelValues(name).Inc()
}

// Push sends the current values to a Prometheus Pushgateway. Migration runs
// are short-lived, so there is nothing to scrape.
func (c *Collector) Push(ctx context.Context, url, job string) error {
	if c == nil || url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(c.registry).PushContext(ctx)
}
