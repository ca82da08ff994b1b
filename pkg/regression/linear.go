// Package regression implements the single-feature linear model that maps
// project size to an expected total defect count.
//
// The model is deliberately small: ordinary least squares over one feature
// yields exactly two coefficients, so the fit is closed-form and the fitted
// model is a plain immutable value that can be serialized without dragging a
// fitting library's internal representation into the artifact format.
package regression

import (
	"errors"
	"fmt"
	"math"
)

// ErrInsufficientData is returned by Fit when the sample set cannot determine
// a line: fewer than two samples, or all samples sharing the same size.
var ErrInsufficientData = errors.New("regression: need at least 2 samples with distinct sizes")

// Sample is one historical project observation.
type Sample struct {
	// Size is the project size (KLOC, function points, or any consistent unit).
	Size float64

	// Defects is the total defect count observed over the project's lifetime.
	Defects float64
}

// LinearModel holds the fitted coefficients of defects ≈ Slope*size + Intercept.
// A LinearModel is immutable after Fit and safe for concurrent readers.
type LinearModel struct {
	Slope     float64
	Intercept float64
}

// Fit computes ordinary least-squares coefficients over the samples.
// The fit is deterministic: the same sample multiset always produces the
// same coefficients, regardless of order.
func Fit(samples []Sample) (*LinearModel, error) {
	if len(samples) < 2 {
		return nil, ErrInsufficientData
	}

	n := float64(len(samples))

	var sumX, sumY float64
	for _, s := range samples {
		if math.IsNaN(s.Size) || math.IsInf(s.Size, 0) || math.IsNaN(s.Defects) || math.IsInf(s.Defects, 0) {
			return nil, fmt.Errorf("regression: non-finite sample (size=%v, defects=%v)", s.Size, s.Defects)
		}
		sumX += s.Size
		sumY += s.Defects
	}

	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for _, s := range samples {
		dx := s.Size - meanX
		sxx += dx * dx
		sxy += dx * (s.Defects - meanY)
	}

	// All sizes identical: the slope is undefined.
	if sxx == 0 {
		return nil, ErrInsufficientData
	}

	slope := sxy / sxx

	return &LinearModel{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
	}, nil
}

// Predict returns the raw linear estimate for a project of the given size.
// Callers that need a defect count should clamp and round the result; see
// estimator.VolumeEstimator.PredictTotal.
func (m *LinearModel) Predict(size float64) float64 {
	return m.Slope*size + m.Intercept
}

// RSquared returns the coefficient of determination of the model over the
// given samples: 1.0 is a perfect fit, 0.0 no better than predicting the
// mean. Returns 1.0 for a degenerate sample set with zero variance in the
// defect counts (any line through the mean is exact).
func (m *LinearModel) RSquared(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sumY float64
	for _, s := range samples {
		sumY += s.Defects
	}
	meanY := sumY / float64(len(samples))

	var ssRes, ssTot float64
	for _, s := range samples {
		res := s.Defects - m.Predict(s.Size)
		ssRes += res * res
		dy := s.Defects - meanY
		ssTot += dy * dy
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}

	return 1 - ssRes/ssTot
}

// MeanAbsoluteError returns the average absolute difference between the
// model's predictions and the observed defect counts. Used by the hold-out
// validation pipeline to report accuracy on unseen projects.
func MeanAbsoluteError(m *LinearModel, samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += math.Abs(s.Defects - m.Predict(s.Size))
	}
	return sum / float64(len(samples))
}
