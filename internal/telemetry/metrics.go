// Package telemetry exports per-tick engine statistics as prometheus metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rule-bloom/internal/core"
)

const namespace = "rulebloom"

// Metrics holds the collectors for one engine. Each Metrics owns its
// registry so tests and concurrent sweeps do not collide.
type Metrics struct {
	registry *prometheus.Registry

	topples     prometheus.Counter
	decays      prometheus.Counter
	grainsAdded prometheus.Counter
	alive       prometheus.Gauge
	tick        prometheus.Gauge
	stepSeconds prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		topples: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "topples_total",
			Help:      "Sandpile topples performed.",
		}),
		decays: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decays_total",
			Help:      "Grains removed by stochastic decay.",
		}),
		grainsAdded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grains_added_total",
			Help:      "Grains injected by live rule cells.",
		}),
		alive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alive_cells",
			Help:      "Live rule cells after the last tick.",
		}),
		tick: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick",
			Help:      "Current tick counter.",
		}),
		stepSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_seconds",
			Help:      "Wall time spent in one engine step.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// Observe records one tick.
func (m *Metrics) Observe(stats core.TickStats, took time.Duration) {
	m.topples.Add(float64(stats.Topples))
	m.decays.Add(float64(stats.Decays))
	m.grainsAdded.Add(float64(stats.GrainsAdded))
	m.alive.Set(float64(stats.Alive))
	m.tick.Set(float64(stats.Tick))
	m.stepSeconds.Observe(took.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
