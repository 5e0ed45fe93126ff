package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	rateLimitDecisions *prometheus.CounterVec
	loginAttempts      *prometheus.CounterVec
	passwordResets     *prometheus.CounterVec
	rateLimitWindows   prometheus.Gauge
}

// New registers all collectors on reg. Passing a *prometheus.Registry also
// makes Handler serve from it.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		rateLimitDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_decisions_total",
				Help: "Rate limit decisions by route class and outcome.",
			},
			[]string{"class", "outcome"},
		),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_total",
				Help: "Login attempts by outcome.",
			},
			[]string{"outcome"},
		),
		passwordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "password_reset_total",
				Help: "Password reset steps by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		rateLimitWindows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rate_limit_windows",
			Help: "Rate limit windows currently held in memory.",
		}),
	}
	reg.MustRegister(
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.rateLimitDecisions,
		m.loginAttempts,
		m.passwordResets,
		m.rateLimitWindows,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Handler serves the registry the metrics were registered on, or the default
// one.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// StartRequest marks a request in flight and returns the function that records
// its completion.
func (m *Metrics) StartRequest(method, path string) func(status int) {
	if m == nil {
		return func(int) {}
	}
	m.httpInFlight.Inc()
	start := time.Now()
	return func(status int) {
		code := strconv.Itoa(status)
		m.httpRequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(method, path, code).Inc()
		m.httpInFlight.Dec()
	}
}

func (m *Metrics) RateLimitDecision(class string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.rateLimitDecisions.WithLabelValues(class, outcome).Inc()
}

func (m *Metrics) RateLimitWindows(n int) {
	if m == nil {
		return
	}
	m.rateLimitWindows.Set(float64(n))
}

func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PasswordReset(stage, outcome string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(stage, outcome).Inc()
}
