package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/hbnb-dev/hbnb-backend/pkg/errors"
)

const (
	OutcomeSuccess = "success"
	// OutcomeRejected is a failure caused by the request: validation,
	// authorization, missing references or conflicts.
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

// UseCaseMetrics counts and times facade operations per entity and action.
type UseCaseMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewUseCaseMetrics registers the use-case metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewUseCaseMetrics(reg prometheus.Registerer) *UseCaseMetrics {
	if reg == nil {
		return &UseCaseMetrics{}
	}
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hbnb_usecase_total",
		Help: "Facade use-case executions by outcome.",
	}, []string{"entity", "action", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hbnb_usecase_duration_seconds",
		Help:    "Duration of facade use cases in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "action"})
	reg.MustRegister(total, duration)
	return &UseCaseMetrics{total: total, duration: duration}
}

// Observe records one execution started at start; err decides the outcome.
func (m *UseCaseMetrics) Observe(entity, action string, start time.Time, err error) {
	if m == nil || m.total == nil {
		return
	}
	outcome := outcomeOf(err)
	entity, action = normalizeLabel(entity), normalizeLabel(action)
	m.total.WithLabelValues(entity, action, outcome).Inc()
	m.duration.WithLabelValues(entity, action).Observe(time.Since(start).Seconds())
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	if _, meta := pkgerrors.Classify(err); meta.ClientFault() {
		return OutcomeRejected
	}
	return OutcomeFailure
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
