package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopmart_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopmart_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Order lifecycle metrics
	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopmart_order_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"from", "to"},
	)
	InvalidTransitionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shopmart_order_invalid_transitions_total",
			Help: "Total number of rejected order status transitions",
		},
	)

	// Inventory metrics
	InsufficientStockTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shopmart_insufficient_stock_total",
			Help: "Total number of operations rejected for insufficient stock",
		},
	)
	LowStockProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopmart_low_stock_products",
			Help: "Number of products at or below their low stock threshold",
		},
	)

	// Database operation metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopmart_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// TrackDBOperation returns a function that records the duration of a
// database operation when deferred.
func TrackDBOperation(operation string) func(start time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordTransition increments the transition counter for a committed move.
func RecordTransition(from, to string) {
	OrderTransitionsTotal.WithLabelValues(from, to).Inc()
}
