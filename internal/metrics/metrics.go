// Package metrics provides the Prometheus metrics of the growth dashboard.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ANIKETSHETTY47/happy-growth-dashboard/internal/domain"
)

// Metrics groups every dashboard collector. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	StoreOperations *prometheus.CounterVec
	Generations     *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveSessions  prometheus.GaugeFunc
}

// New creates the collectors and registers them with reg. sessions reports
// the live session count for the active-sessions gauge and may be nil.
func New(reg prometheus.Registerer, sessions func() int) (*Metrics, error) {
	m := &Metrics{
		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "growth_store_operations_total",
			Help: "Record store calls partitioned by operation and outcome.",
		}, []string{"op", "status"}),
		Generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "growth_text_generations_total",
			Help: "Text generation attempts partitioned by kind and outcome.",
		}, []string{"kind", "status"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "growth_logins_total",
			Help: "Sign-in attempts partitioned by outcome.",
		}, []string{"status"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "growth_http_requests_total",
			Help: "HTTP requests partitioned by method, route and status code.",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "growth_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"method", "route"}),
	}

	collectors := []prometheus.Collector{m.StoreOperations, m.Generations, m.Logins, m.Requests, m.RequestDuration}
	if sessions != nil {
		m.ActiveSessions = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "growth_active_sessions",
			Help: "Sessions currently held in the session store.",
		}, func() float64 { return float64(sessions()) })
		collectors = append(collectors, m.ActiveSessions)
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register growth metrics: %w", err)
		}
	}
	return m, nil
}

func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(op, status(err)).Inc()
}

func (m *Metrics) ObserveGeneration(kind string, err error) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(kind, status(err)).Inc()
}

func (m *Metrics) ObserveLogin(err error) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, fmt.Sprint(code)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
