package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts and times resource store operations on its own registry.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

func NewRecorder(namespace string) *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	ns := FmtFixer(namespace)
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "resource",
			Name:      "operations_total",
			Help:      "Resource store operations by operation and result.",
		},
		[]string{"operation", "result"},
	)
	durations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "resource",
			Name:      "operation_duration_seconds",
			Help:      "Duration of resource store operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	registry.MustRegister(operations, durations)

	return &Recorder{
		registry:   registry,
		operations: operations,
		durations:  durations,
	}
}

// Observe records one finished operation.
func (r *Recorder) Observe(operation, result string, start time.Time) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.durations.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// FmtFixer converts a name into a valid metric name component.
func FmtFixer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "-", "_"), ".", "_")
}
