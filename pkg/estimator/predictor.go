package estimator

import (
	"errors"
	"fmt"

	"github.com/defectcast/defectcast/pkg/rayleigh"
)

// ErrModelUnavailable is the single error condition the service boundary
// sees from Predict when no usable fitted model can be obtained.
var ErrModelUnavailable = errors.New("predictor: predictive model unavailable, train it before serving predictions")

// Forecast is the result of one prediction: a total defect estimate and its
// spread over the projected months. Distribution and Months always have
// equal length floor(duration*1.5), with Months contiguous from 1.
type Forecast struct {
	TotalDefects int
	Distribution []float64
	Months       []int
}

// DefectPredictor composes the volume estimator with the Rayleigh
// distributor. It holds no state of its own beyond the estimator's cached
// model, so a single instance serves all requests.
type DefectPredictor struct {
	estimator *VolumeEstimator
}

// NewPredictor creates a DefectPredictor over the given estimator.
func NewPredictor(e *VolumeEstimator) *DefectPredictor {
	return &DefectPredictor{estimator: e}
}

// Predict estimates the total defect count for a project of the given size
// and spreads it over the given duration in months.
//
// The only side effect is the estimator's one-time lazy model load. A
// missing or unloadable model is surfaced as ErrModelUnavailable; a
// non-positive duration as rayleigh.ErrInvalidDuration.
func (p *DefectPredictor) Predict(size, durationMonths float64) (Forecast, error) {
	total, err := p.estimator.PredictTotal(size)
	if err != nil {
		if errors.Is(err, ErrModelNotReady) {
			return Forecast{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return Forecast{}, err
	}

	values, months, err := rayleigh.Distribute(total, durationMonths)
	if err != nil {
		return Forecast{}, err
	}

	return Forecast{
		TotalDefects: total,
		Distribution: values,
		Months:       months,
	}, nil
}

// Ready reports whether the underlying estimator has a usable model, without
// triggering a load. Used by the health endpoint.
func (p *DefectPredictor) Ready() bool {
	return p.estimator.Ready()
}
