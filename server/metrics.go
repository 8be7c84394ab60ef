package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mini-echo/message"
)

// Metrics holds the server's Prometheus instruments. Each Metrics owns its
// own registry so two servers in one process never fight over metric names.
//
// All recording methods tolerate a nil receiver; a server without metrics
// calls them anyway.
type Metrics struct {
	registry  *prometheus.Registry
	exchanges *prometheus.CounterVec
	duration  prometheus.Histogram
	active    prometheus.Gauge
	badFrames prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		exchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mini_echo_exchanges_total",
			Help: "Completed exchanges by request type and status.",
		}, []string{"type", "status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mini_echo_exchange_duration_seconds",
			Help:    "Time from decoded request to written response.",
			Buckets: prometheus.DefBuckets,
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mini_echo_active_connections",
			Help: "Connections currently open.",
		}),
		badFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "mini_echo_bad_frames_total",
			Help: "Connections dropped because the request frame would not decode.",
		}),
	}
}

// Handler serves the text exposition format for this server's registry,
// typically mounted on a separate HTTP listener.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.active.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.active.Dec()
}

func (m *Metrics) badFrame() {
	if m == nil {
		return
	}
	m.badFrames.Inc()
}

func (m *Metrics) exchange(t message.RequestType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.exchanges.WithLabelValues(t.String(), status).Inc()
	m.duration.Observe(d.Seconds())
}
