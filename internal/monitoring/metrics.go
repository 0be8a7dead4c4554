package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Webhook metrics
	webhookRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_webhook_requests_total",
			Help: "Total number of webhook requests handled",
		},
		[]string{"outcome"},
	)

	// Order metrics
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_orders_total",
			Help: "Total number of orders forwarded to the exchange",
		},
		[]string{"symbol", "side", "type"},
	)

	orderAmount = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_order_amount",
			Help:    "Distribution of buy order amounts in quote units",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	// Gate metrics
	gateRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_gate_rejections_total",
			Help: "Total number of orders refused by the safety gate",
		},
		[]string{"rule"},
	)

	// Session metrics
	sessionBaseline = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_session_baseline",
			Help: "Opening quote balance used as the PnL baseline",
		},
	)

	quoteBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bridge_quote_balance",
			Help: "Last observed free quote balance",
		},
		[]string{"asset"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors by category",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(webhookRequestsTotal)
	prometheus.MustRegister(ordersTotal)
	prometheus.MustRegister(orderAmount)
	prometheus.MustRegister(gateRejectionsTotal)
	prometheus.MustRegister(sessionBaseline)
	prometheus.MustRegister(quoteBalance)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint.
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint.
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordWebhook records the outcome of one webhook request.
func RecordWebhook(outcome string) {
	webhookRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordOrder records an order forwarded to the exchange.
func RecordOrder(symbol, side, orderType string) {
	ordersTotal.WithLabelValues(symbol, side, orderType).Inc()
}

// RecordOrderAmount records the quote amount of a buy order.
func RecordOrderAmount(symbol string, amount float64) {
	orderAmount.WithLabelValues(symbol).Observe(amount)
}

// RecordRejection records a safety-gate or sizing rejection.
func RecordRejection(rule string) {
	gateRejectionsTotal.WithLabelValues(rule).Inc()
}

// UpdateSessionBaseline updates the session baseline gauge.
func UpdateSessionBaseline(baseline float64) {
	sessionBaseline.Set(baseline)
}

// UpdateQuoteBalance updates the observed quote balance gauge.
func UpdateQuoteBalance(asset string, balance float64) {
	quoteBalance.WithLabelValues(asset).Set(balance)
}

// RecordError records an error by category.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
