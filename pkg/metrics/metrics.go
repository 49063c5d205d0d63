// Package metrics exposes Prometheus counters for remote calls and lifecycle transitions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flowgate"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry    *prometheus.Registry
	remoteCalls *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Calls made to the remote workflow server, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_transitions_total",
			Help:      "Recorded deployment history entries, by action and outcome.",
		}, []string{"action", "outcome"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.remoteCalls,
		m.transitions,
	)

	return m
}

func (m *Metrics) ObserveRemoteCall(operation string, err error) {
	if m == nil {
		return
	}

	m.remoteCalls.WithLabelValues(operation, outcome(err == nil)).Inc()
}

func (m *Metrics) ObserveTransition(action string, success bool) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(action, outcome(success)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}

	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
