package metric

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meshnode"

// Registry holds all node metrics.
type Registry struct {
	registry *prometheus.Registry

	MessagesReceived *prometheus.CounterVec
	MessagesSent     *prometheus.CounterVec
	HandleDuration   *prometheus.HistogramVec

	GossipSent       prometheus.Counter
	GossipSuppressed prometheus.Counter
	Ticks            prometheus.Counter
	TicksDropped     prometheus.Counter

	QueueDepth prometheus.Gauge
	StateSize  prometheus.Gauge

	BuildInfo *prometheus.GaugeVec
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound messages by body type.",
		}, []string{"type"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Outbound messages by body type.",
		}, []string{"type"}),
		HandleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handle_duration_seconds",
			Help:      "Time spent in the node state machine per message.",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 10),
		}, []string{"type"}),

		GossipSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gossip_sent_total",
			Help:      "Gossip messages written.",
		}),
		GossipSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gossip_suppressed_total",
			Help:      "Gossip messages skipped by the gossip rate limit.",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Gossip timer ticks fired.",
		}),
		TicksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_dropped_total",
			Help:      "Gossip ticks discarded because the event queue was full.",
		}),

		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_queue_depth",
			Help:      "Events waiting for the consumer.",
		}),
		StateSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_size",
			Help:      "Size of the node state (values, counter entries or log messages).",
		}),

		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version and commit).",
		}, []string{"version", "commit"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.MessagesReceived,
		r.MessagesSent,
		r.HandleDuration,
		r.GossipSent,
		r.GossipSuppressed,
		r.Ticks,
		r.TicksDropped,
		r.QueueDepth,
		r.StateSize,
		r.BuildInfo,
	)
	return r
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler serving the global registry.
func Handler() http.Handler {
	return Global().Handler()
}

// Handler returns an HTTP handler serving r.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// SetBuildInfo publishes the binary version.
func (r *Registry) SetBuildInfo(version, commit string) {
	r.BuildInfo.WithLabelValues(version, commit).Set(1)
}

// MessageReceived counts one inbound message.
func (r *Registry) MessageReceived(msgType string) {
	r.MessagesReceived.WithLabelValues(msgType).Inc()
}

// MessageSent counts one outbound message.
func (r *Registry) MessageSent(msgType string) {
	r.MessagesSent.WithLabelValues(msgType).Inc()
}

// ObserveHandle records handler latency. It implements the scheduler's
// HandleDuration hook.
func (r *Registry) ObserveHandle(msgType string, d time.Duration) {
	r.HandleDuration.WithLabelValues(msgType).Observe(d.Seconds())
}

// RecordGossipSent counts one gossip message written.
func (r *Registry) RecordGossipSent() {
	r.GossipSent.Inc()
}

// RecordGossipSuppressed counts one gossip message skipped by the rate limit.
func (r *Registry) RecordGossipSuppressed() {
	r.GossipSuppressed.Inc()
}

// RecordTick counts one timer tick.
func (r *Registry) RecordTick() {
	r.Ticks.Inc()
}

// RecordTickDropped counts one dropped tick.
func (r *Registry) RecordTickDropped() {
	r.TicksDropped.Inc()
}

// SetQueueDepth publishes the event queue length.
func (r *Registry) SetQueueDepth(n int) {
	r.QueueDepth.Set(float64(n))
}

// SetStateSize publishes the node state size.
func (r *Registry) SetStateSize(n int) {
	r.StateSize.Set(float64(n))
}
