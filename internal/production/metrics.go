package production

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/statekeep/internal/core"
)

// PrometheusMetrics implements core.Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	internTotal   *prometheus.CounterVec
	cloneTotal    *prometheus.CounterVec
	cloneEntities *prometheus.HistogramVec
	historyDepth  prometheus.Gauge
	captureTotal  prometheus.Counter
	restoreTotal  *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		internTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statekeep",
			Name:      "intern_requests_total",
			Help:      "Intern calls by outcome (created or reused).",
		}, []string{"outcome"}),
		cloneTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statekeep",
			Name:      "clone_operations_total",
			Help:      "Clone operations by mode and status.",
		}, []string{"mode", "status"}),
		cloneEntities: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "statekeep",
			Name:      "clone_entities",
			Help:      "Entities copied per successful clone.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
		}, []string{"mode"}),
		historyDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "statekeep",
			Name:      "history_depth",
			Help:      "Snapshot stack depth after the most recent capture.",
		}),
		captureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "statekeep",
			Name:      "history_captures_total",
			Help:      "Snapshots captured.",
		}),
		restoreTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "statekeep",
			Name:      "history_restore_attempts_total",
			Help:      "Restore attempts by result (accepted or rejected).",
		}, []string{"result"}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{
		m.internTotal, m.cloneTotal, m.cloneEntities, m.historyDepth, m.captureTotal, m.restoreTotal,
	} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *PrometheusMetrics) InternServed(outcome core.Outcome) {
	m.internTotal.WithLabelValues(outcome.String()).Inc()
}

func (m *PrometheusMetrics) CloneFinished(mode core.CloneMode, entities int, err error) {
	if err != nil {
		m.cloneTotal.WithLabelValues(string(mode), "error").Inc()
		return
	}
	m.cloneTotal.WithLabelValues(string(mode), "ok").Inc()
	m.cloneEntities.WithLabelValues(string(mode)).Observe(float64(entities))
}

func (m *PrometheusMetrics) SnapshotCaptured(depth int) {
	m.captureTotal.Inc()
	m.historyDepth.Set(float64(depth))
}

func (m *PrometheusMetrics) RestoreAttempted(result core.RestoreResult) {
	m.restoreTotal.WithLabelValues(string(result)).Inc()
}
