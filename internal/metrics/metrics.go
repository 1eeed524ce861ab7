// Package metrics exposes Prometheus counters for the frame pipeline and
// the cursor controller.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ayusman/mudra/internal/cursor"
	"github.com/ayusman/mudra/internal/gesture"
)

const namespace = "mudra"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

type Metrics struct {
	Frames      *prometheus.CounterVec
	Gestures    *prometheus.CounterVec
	Effects     *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	CursorMode  prometheus.Gauge
	DetectTime  prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames processed, by whether a hand was detected.",
		}, []string{"hand"}),
		Gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gestures_total",
			Help:      "Classified frames by gesture label.",
		}, []string{"label"}),
		Effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cursor",
			Name:      "effects_total",
			Help:      "Cursor effects applied to the host, by kind.",
		}, []string{"kind"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cursor",
			Name:      "mode_transitions_total",
			Help:      "Cursor mode changes by target mode and reason.",
		}, []string{"mode", "reason"}),
		CursorMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cursor",
			Name:      "active",
			Help:      "1 while cursor mode is active.",
		}),
		DetectTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "detect_duration_seconds",
			Help:      "Time spent in hand detection per frame.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
	reg.MustRegister(m.Frames, m.Gestures, m.Effects, m.Transitions, m.CursorMode, m.DetectTime)
	return m
}

// ObserveFrame records one detection result. A nil observation means no hand.
func (m *Metrics) ObserveFrame(obs *gesture.Observation) {
	if obs == nil {
		m.Frames.WithLabelValues("absent").Inc()
		return
	}
	m.Frames.WithLabelValues("present").Inc()
	m.Gestures.WithLabelValues(string(obs.Label)).Inc()
}

// ObserveEffect is a cursor.Controller observer.
func (m *Metrics) ObserveEffect(e cursor.Effect) {
	m.Effects.WithLabelValues(e.Kind()).Inc()
	if mc, ok := e.(cursor.ModeChanged); ok {
		m.Transitions.WithLabelValues(string(mc.Mode), string(mc.Reason)).Inc()
		if mc.Mode == cursor.Active {
			m.CursorMode.Set(1)
		} else {
			m.CursorMode.Set(0)
		}
	}
}
