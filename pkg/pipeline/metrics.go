package pipeline

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// File outcomes recorded by Metrics.
const (
	resultOK     = "ok"
	resultFailed = "failed"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	FilesProcessed  *prometheus.CounterVec
	Components      prometheus.Counter
	CacheHits       *prometheus.CounterVec
	ProcessDuration prometheus.Histogram
	WatchEvents     *prometheus.CounterVec
	Sources         prometheus.Gauge
}

// NewMetrics creates unregistered collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		FilesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_files_processed_total",
			Help: "Source files processed, by result",
		}, []string{"result"}),
		Components: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docgen_components_extracted_total",
			Help: "Components extracted from source files",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_cache_hits_total",
			Help: "Normalization results served from cache, by layer",
		}, []string{"layer"}),
		ProcessDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "docgen_file_process_seconds",
			Help:    "Time to extract and emit one source file",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		WatchEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docgen_watch_events_total",
			Help: "File system events handled in watch mode, by operation",
		}, []string{"op"}),
		Sources: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docgen_sources",
			Help: "Source files with nodes in the graph",
		}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range []prometheus.Collector{
		m.FilesProcessed, m.Components, m.CacheHits,
		m.ProcessDuration, m.WatchEvents, m.Sources,
	} {
		errs = append(errs, reg.Register(c))
	}
	return errors.Join(errs...)
}

func (m *Metrics) observeFile(start time.Time, components int, err error) {
	if m == nil {
		return
	}
	m.ProcessDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.FilesProcessed.WithLabelValues(resultFailed).Inc()
		return
	}
	m.FilesProcessed.WithLabelValues(resultOK).Inc()
	m.Components.Add(float64(components))
}

func (m *Metrics) cacheHit(layer string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(layer).Inc()
}

func (m *Metrics) watchEvent(op string) {
	if m == nil {
		return
	}
	m.WatchEvents.WithLabelValues(op).Inc()
}

func (m *Metrics) setSources(n int) {
	if m == nil {
		return
	}
	m.Sources.Set(float64(n))
}
