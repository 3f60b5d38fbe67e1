package prometheus

import (
	"cafepos/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Order metrics
	OrdersPlacedCounter      prometheus.CounterVec
	OrderPlacementErrCounter prometheus.CounterVec
	OrderStatusCounter       prometheus.CounterVec

	// Payment webhook metrics
	WebhookCounter prometheus.CounterVec

	// Inventory metrics
	StockMovementCounter prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	OrdersPlacedCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of successfully placed orders",
		},
		[]string{"payment_method", "type"},
	)

	OrderPlacementErrCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_placement_errors_total",
			Help: "Total number of rejected order placements",
		},
		[]string{"reason"}, // insufficient_stock, product_not_found, validation, gateway, db
	)

	OrderStatusCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_status_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"to"},
	)

	WebhookCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_payment_webhooks_total",
			Help: "Total number of payment gateway notifications processed",
		},
		[]string{"transaction_status", "outcome"}, // outcome: applied, rejected, error
	)

	StockMovementCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Total number of inventory stock movements",
		},
		[]string{"type"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of failed authentication attempts",
		},
	)
}
