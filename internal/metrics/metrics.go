// Package metrics records per-repository operation outcomes with
// Prometheus collectors on a private registry.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gitfleet"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder owns the collectors for one process.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	batchSize  *prometheus.GaugeVec
}

// NewRecorder creates a Recorder and registers its collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Repository operations by operation and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Time spent on a single repository operation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"operation"}),
		batchSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_batch_repositories",
			Help:      "Repositories in the most recent batch by operation and result.",
		}, []string{"operation", "result"}),
	}
	r.registry.MustRegister(r.operations, r.duration, r.batchSize)
	return r
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Observe records one repository operation.
func (r *Recorder) Observe(operation string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveBatch records the outcome counts of a finished batch.
func (r *Recorder) ObserveBatch(operation string, succeeded, failed int) {
	if r == nil {
		return
	}
	r.batchSize.WithLabelValues(operation, ResultSuccess).Set(float64(succeeded))
	r.batchSize.WithLabelValues(operation, ResultFailure).Set(float64(failed))
}

// WriteTextfile writes all collected metrics in the text exposition format,
// replacing path atomically. Intended for the node exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if path == "" {
		return errors.New("metrics textfile path is empty")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
