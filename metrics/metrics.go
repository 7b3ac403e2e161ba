// Package metrics provides Prometheus metrics for feed publishing and serving.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feedformatter"

// Collector holds all Prometheus metrics for feedformatter.
type Collector struct {
	// Publish metrics
	RendersTotal   *prometheus.CounterVec
	RenderDuration *prometheus.HistogramVec
	RenderItems    *prometheus.GaugeVec
	Warnings       *prometheus.CounterVec
	LastPublished  *prometheus.GaugeVec

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Watch metrics
	WatchEvents *prometheus.CounterVec
}

// New creates a collector whose metrics are registered with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of feed renders by result",
			},
			[]string{"feed", "format", "result"},
		),
		RenderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time to load and render a feed",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"format"},
		),
		RenderItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "feed_items",
				Help:      "Number of items in the last successful render",
			},
			[]string{"feed"},
		),
		Warnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "render_warnings_total",
				Help:      "Degradations recorded while rendering",
			},
			[]string{"feed", "warning"},
		),
		LastPublished: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_published_timestamp",
				Help:      "Unix timestamp of the last successful publish",
			},
			[]string{"feed"},
		),
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		WatchEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "watch_events_total",
				Help:      "File system events that triggered a re-render",
			},
			[]string{"result"},
		),
	}
}

// ObserveRender records one render attempt. A nil collector is a no-op.
func (c *Collector) ObserveRender(feedName, format string, items int, d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.RendersTotal.WithLabelValues(feedName, format, result).Inc()
	c.RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		c.RenderItems.WithLabelValues(feedName).Set(float64(items))
		c.LastPublished.WithLabelValues(feedName).SetToCurrentTime()
	}
}

// RecordWarnings adds per-type warning counts for a feed.
func (c *Collector) RecordWarnings(feedName string, counts map[string]int) {
	if c == nil {
		return
	}
	for warning, n := range counts {
		c.Warnings.WithLabelValues(feedName, warning).Add(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	c.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveWatch records the outcome of a watch-triggered render.
func (c *Collector) ObserveWatch(err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.WatchEvents.WithLabelValues("error").Inc()
		return
	}
	c.WatchEvents.WithLabelValues("ok").Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
