// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Signup outcomes
const (
	SignupCreated          = "created"
	SignupPasswordMismatch = "password_mismatch"
	SignupRejected         = "rejected"
	SignupProfileFailed    = "profile_failed"
)

// Recorder is the metrics surface used by services and handlers
type Recorder interface {
	RecordSignup(outcome string)
	RecordGateRedirect(target, reason string)
	RecordAuthStateChange(signedIn bool)
	RecordStreamError()
	SetSSEClients(n int)
}

// Collector records metrics into a Prometheus registry
type Collector struct {
	signups       *prometheus.CounterVec
	gateRedirects *prometheus.CounterVec
	authChanges   *prometheus.CounterVec
	streamErrors  prometheus.Counter
	sseClients    prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitness_signup_total",
			Help: "Signup submissions by outcome",
		}, []string{"outcome"}),
		gateRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitness_gate_redirects_total",
			Help: "Redirects issued by the session gate",
		}, []string{"target", "reason"}),
		authChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fitness_auth_state_changes_total",
			Help: "Session-change notifications received by the gate",
		}, []string{"state"}),
		streamErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitness_auth_stream_errors_total",
			Help: "Errors reported by the session-change stream",
		}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fitness_sse_clients",
			Help: "Connected SSE clients",
		}),
	}

	reg.MustRegister(
		c.signups,
		c.gateRedirects,
		c.authChanges,
		c.streamErrors,
		c.sseClients,
	)

	return c
}

func (c *Collector) RecordSignup(outcome string) {
	c.signups.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordGateRedirect(target, reason string) {
	c.gateRedirects.WithLabelValues(target, reason).Inc()
}

func (c *Collector) RecordAuthStateChange(signedIn bool) {
	state := "signed_out"
	if signedIn {
		state = "signed_in"
	}
	c.authChanges.WithLabelValues(state).Inc()
}

func (c *Collector) RecordStreamError() {
	c.streamErrors.Inc()
}

func (c *Collector) SetSSEClients(n int) {
	c.sseClients.Set(float64(n))
}

// Nop discards everything. Use it where metrics are not wired.
type Nop struct{}

func (Nop) RecordSignup(string)               {}
func (Nop) RecordGateRedirect(string, string) {}
func (Nop) RecordAuthStateChange(bool)        {}
func (Nop) RecordStreamError()                {}
func (Nop) SetSSEClients(int)                 {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
