// Package metrics exposes Prometheus metrics for application attempts.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/atlas/autoapply/internal/types"
)

// Recorder records one observation per application attempt.
type Recorder struct {
	Applications *prometheus.CounterVec
	Duration     *prometheus.HistogramVec
	FieldsFilled *prometheus.HistogramVec
}

// NewRecorder registers the application metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		Applications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autoapply_applications_total",
				Help: "Total number of application attempts by platform and final status",
			},
			[]string{"platform", "status"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoapply_application_duration_seconds",
				Help:    "Duration of application attempts in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"platform"},
		),
		FieldsFilled: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autoapply_fields_filled",
				Help:    "Number of form fields filled per application attempt",
				Buckets: prometheus.LinearBuckets(0, 2, 10),
			},
			[]string{"platform"},
		),
	}
}

// ObserveApply records a finished attempt.
func (r *Recorder) ObserveApply(platform string, status types.ApplyStatus, elapsed time.Duration, fieldsFilled int) {
	r.Applications.WithLabelValues(platform, string(status)).Inc()
	r.Duration.WithLabelValues(platform).Observe(elapsed.Seconds())
	r.FieldsFilled.WithLabelValues(platform).Observe(float64(fieldsFilled))
}
