// Package metrics holds the Prometheus collectors shared by the HTTP and
// gRPC transports. Everything is registered on a private registry so the
// process never touches prometheus.DefaultRegisterer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for the result dimension.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Metrics contains the counters recorded by the transports. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	LoginAttempts  *prometheus.CounterVec
	Authorizations *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

// New creates a registry with the Go and process collectors plus the
// sentinel counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_login_attempts_total",
				Help: "Total number of login attempts by transport and result",
			},
			[]string{"transport", "result"},
		),
		Authorizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_authorizations_total",
				Help: "Total number of access token checks by transport and result",
			},
			[]string{"transport", "result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentinel_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}

	reg.MustRegister(m.LoginAttempts, m.Authorizations, m.HTTPRequests)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveLogin(transport, result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(transport, result).Inc()
}

func (m *Metrics) ObserveAuthorization(transport, result string) {
	if m == nil {
		return
	}
	m.Authorizations.WithLabelValues(transport, result).Inc()
}

func (m *Metrics) ObserveHTTPRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, http.StatusText(code)).Inc()
}
