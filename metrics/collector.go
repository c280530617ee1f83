package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exports document processing measurements to Prometheus and
// mirrors them into a Store. It implements the docparse recorder interface.
//
// Metrics:
//   - aura_extraction_documents_total{kind,status} - documents by outcome
//   - aura_extraction_duration_seconds{stage} - time spent per stage
//   - aura_extraction_fields_found_total{field} - extracted field counts
//   - aura_extraction_upload_bytes - upload size distribution
type Collector struct {
	registry *prometheus.Registry
	store    *Store

	documents *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	fields    *prometheus.CounterVec
	uploads   prometheus.Histogram
}

// NewCollector registers the extraction metrics on a new registry together
// with the Go runtime and process collectors. store may be nil.
func NewCollector(store *Store) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newCollector(reg, store)
}

func newCollector(reg *prometheus.Registry, store *Store) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		store:    store,
		documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aura_extraction_documents_total",
				Help: "Total number of uploaded documents by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aura_extraction_duration_seconds",
				Help:    "Duration of document processing stages in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"stage"}, // "decode" or "extract"
		),
		fields: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aura_extraction_fields_found_total",
				Help: "Total number of times each business-brief field was extracted",
			},
			[]string{"field"},
		),
		uploads: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aura_extraction_upload_bytes",
			Help:    "Size of uploaded documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1 KiB to 16 MiB
		}),
	}
}

// ObserveUpload records an upload size.
func (c *Collector) ObserveUpload(size int64) {
	c.uploads.Observe(float64(size))
	if c.store != nil {
		c.store.ObserveUpload(size)
	}
}

// ObserveDocument records a parse outcome. An empty kind is reported as
// "unknown".
func (c *Collector) ObserveDocument(kind, status string) {
	if kind == "" {
		kind = UnknownKind
	}
	c.documents.WithLabelValues(kind, status).Inc()
	if c.store != nil {
		c.store.ObserveDocument(kind, status)
	}
}

// ObserveStage records a stage duration.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.duration.WithLabelValues(stage).Observe(d.Seconds())
	if c.store != nil {
		c.store.ObserveStage(stage, d)
	}
}

// ObserveFields increments the counter of every extracted field.
func (c *Collector) ObserveFields(names []string) {
	for _, name := range names {
		c.fields.WithLabelValues(name).Inc()
	}
	if c.store != nil {
		c.store.ObserveFields(names)
	}
}

// Store returns the in-memory summary, or nil.
func (c *Collector) Store() *Store {
	return c.store
}

// Registry returns the registry the metrics are registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
