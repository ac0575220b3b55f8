package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard core.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	gatewayDuration   *prometheus.HistogramVec
	gatewayErrors     *prometheus.CounterVec
	sessionTeardowns  *prometheus.CounterVec
	storeRefreshes    *prometheus.CounterVec
	optimisticUpdates *prometheus.CounterVec
	notifications     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		gatewayDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_gateway_duration_seconds",
				Help:    "Duration of platform API calls by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		gatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_gateway_errors_total",
				Help: "Total failed platform API calls by operation.",
			},
			[]string{"operation"},
		),
		sessionTeardowns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_session_teardowns_total",
				Help: "Sessions torn down after a 401, by namespace.",
			},
			[]string{"namespace"},
		),
		storeRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_store_refreshes_total",
				Help: "Store refresh outcomes by store and result.",
			},
			[]string{"store", "result"},
		),
		optimisticUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_optimistic_updates_total",
				Help: "Optimistic mutations applied before server confirmation.",
			},
			[]string{"kind"},
		),
		notifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_notifications_total",
				Help: "Transient notifications shown, by kind.",
			},
			[]string{"kind"},
		),
	}
}

// RecordGatewayDuration records the duration of a platform call.
func (m *Metrics) RecordGatewayDuration(operation string, d time.Duration) {
	m.gatewayDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrGatewayError increments the gateway error counter.
func (m *Metrics) IncrGatewayError(operation string) {
	m.gatewayErrors.WithLabelValues(operation).Inc()
}

// IncrSessionTeardown counts a 401-triggered session teardown.
func (m *Metrics) IncrSessionTeardown(namespace string) {
	m.sessionTeardowns.WithLabelValues(namespace).Inc()
}

// IncrStoreRefresh counts a store refresh outcome ("ok" or "error").
func (m *Metrics) IncrStoreRefresh(store, result string) {
	m.storeRefreshes.WithLabelValues(store, result).Inc()
}

// IncrOptimisticUpdate counts an optimistic mutation by kind.
func (m *Metrics) IncrOptimisticUpdate(kind string) {
	m.optimisticUpdates.WithLabelValues(kind).Inc()
}

// IncrNotification counts a shown notification by kind.
func (m *Metrics) IncrNotification(kind string) {
	m.notifications.WithLabelValues(kind).Inc()
}

// CounterValue extracts the current value from a labelled counter.
func CounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// OptimisticUpdateCount reports the cumulative optimistic mutations by kind.
func (m *Metrics) OptimisticUpdateCount(kind string) float64 {
	return CounterValue(m.optimisticUpdates, kind)
}

// SessionTeardownCount reports the cumulative teardowns by namespace.
func (m *Metrics) SessionTeardownCount(namespace string) float64 {
	return CounterValue(m.sessionTeardowns, namespace)
}
