// Package metrics exposes Prometheus collectors for message store operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation names used as the "operation" label.
const (
	OpEnsureSchema = "ensure_schema"
	OpInsert       = "insert"
	OpQuery        = "query"
)

// Collector groups the store metrics under its own registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	Registry *prometheus.Registry

	Operations   *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	RowsReturned prometheus.Counter
	SchemaCreate prometheus.Counter
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates a Collector with Go runtime and process collectors registered.
func New() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgstore_operations_total",
				Help: "Total number of message store operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "msgstore_operation_duration_seconds",
				Help:    "Latency of message store operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RowsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "msgstore_query_rows_total",
			Help: "Total number of message rows returned by queries",
		}),
		SchemaCreate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "msgstore_schema_created_total",
			Help: "Number of times the messages table had to be created",
		}),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgstore_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "msgstore_http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	c.Registry.MustRegister(
		c.Operations,
		c.Duration,
		c.RowsReturned,
		c.SchemaCreate,
		c.HTTPRequests,
		c.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Observe records one finished operation that started at start.
func (c *Collector) Observe(op string, start time.Time, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.Operations.WithLabelValues(op, outcome).Inc()
	c.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// AddRows counts rows returned by a query.
func (c *Collector) AddRows(n int) {
	if c == nil {
		return
	}
	c.RowsReturned.Add(float64(n))
}

// SchemaCreated counts a table creation.
func (c *Collector) SchemaCreated() {
	if c == nil {
		return
	}
	c.SchemaCreate.Inc()
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}
