// Package metrics provides Prometheus metrics instrumentation for the
// predictor service.
//
// Metrics exposed:
//   - defectcast_predict_seconds: Histogram of prediction request duration
//   - defectcast_predictions_total: Counter of served predictions
//   - defectcast_model_ready: Gauge, 1 when a fitted model is loaded
//   - defectcast_model_r_squared: Gauge of the loaded model's training R²
//   - defectcast_estimated_defects: Gauge of the most recent total estimate
//   - defectcast_errors_total: Counter of errors by component and reason
//
// All metrics are exposed via the /metrics HTTP endpoint for Prometheus
// scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the predictor.
type Metrics struct {
	PredictSeconds   prometheus.Histogram
	PredictionsTotal prometheus.Counter
	ModelReady       prometheus.Gauge
	ModelRSquared    prometheus.Gauge
	EstimatedDefects prometheus.Gauge
	ErrorsTotal      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PredictSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "defectcast_predict_seconds",
			Help:    "Time spent serving a prediction request",
			Buckets: prometheus.DefBuckets,
		}),

		PredictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "defectcast_predictions_total",
			Help: "Total number of predictions served",
		}),

		ModelReady: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "defectcast_model_ready",
			Help: "Whether a fitted model is loaded (1) or not (0)",
		}),

		ModelRSquared: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "defectcast_model_r_squared",
			Help: "Training R² of the loaded model",
		}),

		EstimatedDefects: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "defectcast_estimated_defects",
			Help: "Total defects estimated by the most recent prediction",
		}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "defectcast_errors_total",
			Help: "Total number of errors by component and reason",
		}, []string{"component", "reason"}),
	}
}

// RecordPredict records the duration of one prediction request and counts it.
func (m *Metrics) RecordPredict(seconds float64) {
	m.PredictSeconds.Observe(seconds)
	m.PredictionsTotal.Inc()
}

// SetModelReady sets the model readiness gauge.
func (m *Metrics) SetModelReady(ready bool) {
	if ready {
		m.ModelReady.Set(1)
	} else {
		m.ModelReady.Set(0)
	}
}

// SetModelRSquared sets the loaded model's R² gauge.
func (m *Metrics) SetModelRSquared(r2 float64) {
	m.ModelRSquared.Set(r2)
}

// SetEstimatedDefects sets the latest total defect estimate.
func (m *Metrics) SetEstimatedDefects(total int) {
	m.EstimatedDefects.Set(float64(total))
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, reason string) {
	m.ErrorsTotal.WithLabelValues(component, reason).Inc()
}
