// Package metrics exposes Prometheus collectors for the ledger and RPC layers.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitter"

// Regeneration results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	regenerations        *prometheus.CounterVec
	regenerationDuration prometheus.Histogram
	outstanding          prometheus.Gauge
	rpcs                 *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		regenerations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regenerations_total",
			Help:      "Ledger regenerations by result.",
		}, []string{"result"}),
		regenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "regeneration_duration_seconds",
			Help:      "Time spent regenerating one event ledger.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		outstanding: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outstanding_obligations",
			Help:      "Unsettled obligations written by the most recent regeneration.",
		}),
		rpcs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests by procedure and result code.",
		}, []string{"procedure", "code"}),
	}
}

// ObserveRegeneration records one regeneration run.
func (m *Metrics) ObserveRegeneration(d time.Duration, outstanding int, err error) {
	if m == nil {
		return
	}
	m.regenerationDuration.Observe(d.Seconds())
	if err != nil {
		m.regenerations.WithLabelValues(ResultError).Inc()
		return
	}
	m.regenerations.WithLabelValues(ResultOK).Inc()
	m.outstanding.Set(float64(outstanding))
}

// ObserveRPC counts one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string) {
	if m == nil {
		return
	}
	m.rpcs.WithLabelValues(procedure, code).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
