package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// TransportMetrics records request outcomes for the remote API executor.
type TransportMetrics struct {
	requests  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	fallbacks prometheus.Counter
}

// NewTransportMetrics registers the transport metrics on the provided registerer.
func NewTransportMetrics(reg prometheus.Registerer) *TransportMetrics {
	if reg == nil {
		return &TransportMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_requests_total",
		Help: "Remote API requests by method and outcome.",
	}, []string{"method", "outcome"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_retries_total",
		Help: "Automatic retries issued by the executor.",
	}, []string{"method"})
	fallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remote_local_fallbacks_total",
		Help: "Results synthesized locally after a recoverable server failure.",
	})
	reg.MustRegister(requests, retries, fallbacks)
	return &TransportMetrics{
		requests:  requests,
		retries:   retries,
		fallbacks: fallbacks,
	}
}

// IncRequest increments the request counter for the method/outcome pair.
func (m *TransportMetrics) IncRequest(method, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncRetry increments the retry counter for the method.
func (m *TransportMetrics) IncRetry(method string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncLocalFallback increments the synthesized-result counter.
func (m *TransportMetrics) IncLocalFallback() {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
