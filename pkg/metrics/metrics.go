// Package metrics exposes authentication counters and hashing latency to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer and the hasher report into.
type Recorder interface {
	RecordLogin(result string)
	RecordSignup(result string)
	RecordGuard(result string)
	ObservePasswordHash(op string, d time.Duration)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	login    *prometheus.CounterVec
	signup   *prometheus.CounterVec
	guard    *prometheus.CounterVec
	hashTime *prometheus.HistogramVec
}

// NewCollector registers all metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		login: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_login_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		signup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_signup_total",
			Help: "Signup attempts by result.",
		}, []string{"result"}),
		guard: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_guard_total",
			Help: "Access guard decisions by result.",
		}, []string{"result"}),
		hashTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "auth_password_hash_seconds",
			Help: "Time spent in bcrypt by operation.",
			// bcrypt at cost 10..14 lands between ~50ms and ~1s.
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op"}),
	}

	reg.MustRegister(c.login, c.signup, c.guard, c.hashTime)
	return c
}

func (c *Collector) RecordLogin(result string) { c.login.WithLabelValues(result).Inc() }
func (c *Collector) RecordSignup(result string) { c.signup.WithLabelValues(result).Inc() }
func (c *Collector) RecordGuard(result string) { c.guard.WithLabelValues(result).Inc() }

func (c *Collector) ObservePasswordHash(op string, d time.Duration) {
	c.hashTime.WithLabelValues(op).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordLogin(string) {}
func (Nop) RecordSignup(string) {}
func (Nop) RecordGuard(string) {}
func (Nop) ObservePasswordHash(string, time.Duration) {}
