package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Backtest metrics
	backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonic_backtests_total",
			Help: "Total number of backtest runs",
		},
		[]string{"symbol", "status"},
	)

	backtestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "harmonic_backtest_duration_seconds",
			Help:    "Wall clock duration of backtest runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	simulatedTrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonic_simulated_trades_total",
			Help: "Total number of simulated trades produced",
		},
		[]string{"symbol", "exit_reason"},
	)

	// Optimizer metrics
	optimizerWindows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonic_optimizer_windows_total",
			Help: "Walk-forward windows evaluated",
		},
		[]string{"status"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harmonic_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(backtestDuration)
	prometheus.MustRegister(simulatedTrades)
	prometheus.MustRegister(optimizerWindows)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordBacktest records a finished backtest run
func RecordBacktest(symbol, status string, elapsed time.Duration) {
	backtestsTotal.WithLabelValues(symbol, status).Inc()
	backtestDuration.WithLabelValues(symbol).Observe(elapsed.Seconds())
}

// RecordTrade records one simulated trade
func RecordTrade(symbol, exitReason string) {
	simulatedTrades.WithLabelValues(symbol, exitReason).Inc()
}

// RecordWindow records one walk-forward window outcome
func RecordWindow(status string) {
	optimizerWindows.WithLabelValues(status).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
