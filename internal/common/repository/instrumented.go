// Package repository times and counts database operations against the
// on-prem ERP and the report archive.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dbOperationDuration tracks the duration of database operations
	dbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wms_monitor",
			Subsystem: "db",
			Name:      "operation_duration_seconds",
			Help:      "Database operation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"store", "operation"},
	)

	// dbOperationTotal counts database operations by result
	dbOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "db",
			Name:      "operations_total",
			Help:      "Total database operations",
		},
		[]string{"store", "operation", "result"},
	)

	// dbOperationErrors counts failed operations by error type
	dbOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wms_monitor",
			Subsystem: "db",
			Name:      "operation_errors_total",
			Help:      "Database operation errors by type",
		},
		[]string{"store", "operation", "error_type"},
	)
)

// SlowQueryThreshold defines when an operation is logged as slow.
// ERP count queries scan large tables, so the bar is higher than for OLTP.
const SlowQueryThreshold = 5 * time.Second

// Instrument wraps a database operation with metrics and logging.
// It records duration and success/failure counts, and logs slow operations.
func Instrument[T any](
	ctx context.Context,
	store string,
	operation string,
	fn func() (T, error),
) (T, error) {
	start := time.Now()

	result, err := fn()

	duration := time.Since(start)
	dbOperationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())

	if err != nil {
		dbOperationTotal.WithLabelValues(store, operation, "error").Inc()
		dbOperationErrors.WithLabelValues(store, operation, classifyError(err)).Inc()

		slog.Error("Database operation failed",
			"store", store,
			"operation", operation,
			"durationMs", duration.Milliseconds(),
			"error", err)
		return result, err
	}

	dbOperationTotal.WithLabelValues(store, operation, "success").Inc()
	if duration > SlowQueryThreshold {
		slog.Warn("Slow database operation",
			"store", store,
			"operation", operation,
			"durationMs", duration.Milliseconds())
	}

	return result, err
}

// classifyError returns a label-safe error type for metrics
func classifyError(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, sql.ErrNoRows):
		return "no_rows"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
