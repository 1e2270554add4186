// Package metrics exposes calculator and zone catalog instrumentation
// through Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/tempus/internal/apperr"
)

// Collector records calculator activity. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	zones      prometheus.Gauge
	reloads    *prometheus.CounterVec
}

// New registers the collectors on reg under namespace. A nil reg gets a
// private registry, which keeps tests independent.
func New(reg *prometheus.Registry, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "tempus"
	}
	c := &Collector{
		gatherer: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calc",
			Name:      "operations_total",
			Help:      "Calculator operations by operation and result (ok, error).",
		}, []string{"op", "result"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calc",
			Name:      "errors_total",
			Help:      "Calculator errors by class (input, range, contract, internal).",
		}, []string{"class"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "calc",
			Name:      "operation_seconds",
			Help:      "Latency of calculator operations in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs .. ~2.6s
		}, []string{"op"}),
		zones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "zones",
			Name:      "catalog_size",
			Help:      "Number of zones currently loaded from the catalog.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zones",
			Name:      "reloads_total",
			Help:      "Zone catalog reloads by result (ok, error).",
		}, []string{"result"}),
	}
	reg.MustRegister(c.operations, c.errors, c.latency, c.zones, c.reloads)
	return c
}

// Observe records one operation.
func (c *Collector) Observe(op string, started time.Time, err error) {
	if c == nil {
		return
	}
	c.latency.WithLabelValues(op).Observe(time.Since(started).Seconds())
	if err == nil {
		c.operations.WithLabelValues(op, "ok").Inc()
		return
	}
	c.operations.WithLabelValues(op, "error").Inc()
	c.errors.WithLabelValues(string(apperr.ClassOf(err))).Inc()
}

// CatalogLoaded records a catalog reload. Partial loads still report
// their size.
func (c *Collector) CatalogLoaded(size int, err error) {
	if c == nil {
		return
	}
	c.zones.Set(float64(size))
	if err != nil {
		c.reloads.WithLabelValues("error").Inc()
		return
	}
	c.reloads.WithLabelValues("ok").Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
