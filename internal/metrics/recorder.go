// Package metrics exposes bot activity as Prometheus metrics
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/purchase-bot/internal/application/port"
	"github.com/garyjia/purchase-bot/internal/domain/entity"
)

const namespace = "purchase_bot"

// Recorder implements port.MetricsRecorder on a private registry
type Recorder struct {
	registry *prometheus.Registry

	submitted     prometheus.Counter
	resolved      *prometheus.CounterVec
	commands      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	pending       prometheus.Gauge
}

var _ port.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a recorder with Go runtime and process collectors registered
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_submitted_total",
			Help:      "Total number of purchase requests accepted from the channel.",
		}),
		resolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_resolved_total",
			Help:      "Total number of purchase requests resolved by an approver.",
		}, []string{"decision"}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of direct message commands handled.",
		}, []string{"command", "outcome"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of pending listings sent.",
		}, []string{"kind"}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_pending",
			Help:      "Current number of unresolved purchase requests.",
		}),
	}
}

func (r *Recorder) RequestSubmitted() {
	r.submitted.Inc()
}

func (r *Recorder) RequestResolved(decision entity.Decision) {
	r.resolved.WithLabelValues(string(decision)).Inc()
}

func (r *Recorder) CommandHandled(command, outcome string) {
	r.commands.WithLabelValues(command, outcome).Inc()
}

func (r *Recorder) NotificationSent(kind string) {
	r.notifications.WithLabelValues(kind).Inc()
}

func (r *Recorder) SetPending(n int) {
	r.pending.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
