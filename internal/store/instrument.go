package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/idilsaglam/issuetracker/internal/model"
)

// Metrics holds the collectors shared by instrumented stores.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	ListSize   prometheus.Histogram
}

// NewMetrics registers the store collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "issuetracker",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Issue store operations by kind and outcome",
		}, []string{"op", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "issuetracker",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Issue store operation latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		ListSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "issuetracker",
			Subsystem: "store",
			Name:      "list_size",
			Help:      "Number of issues per loaded or saved list",
			Buckets:   []float64{0, 1, 3, 10, 30, 100},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Duration, m.ListSize)
	}
	return m
}

type instrumented struct {
	next    Store
	metrics *Metrics
}

// Instrument wraps next so every Load and Save is counted and timed.
func Instrument(next Store, m *Metrics) Store {
	return &instrumented{next: next, metrics: m}
}

func (s *instrumented) Load(ctx context.Context, resourceID string) ([]model.Issue, error) {
	start := time.Now()
	issues, err := s.next.Load(ctx, resourceID)
	s.observe("load", start, len(issues), err)
	return issues, err
}

func (s *instrumented) Save(ctx context.Context, resourceID string, issues []model.Issue) error {
	start := time.Now()
	err := s.next.Save(ctx, resourceID, issues)
	s.observe("save", start, len(issues), err)
	return err
}

func (s *instrumented) observe(op string, start time.Time, size int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.Operations.WithLabelValues(op, status).Inc()
	s.metrics.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err == nil {
		s.metrics.ListSize.Observe(float64(size))
	}
}
