// Package rayleigh spreads a total defect count over a project's calendar
// months using the Rayleigh probability density function.
//
// Empirically, defect discovery in software projects rises to a peak before
// the midpoint of the schedule and decays afterwards. The Rayleigh curve
// models that shape with a single scale parameter sigma; placing sigma at
// 40% of the estimated duration puts the defect peak where agile projects
// typically observe it.
package rayleigh

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDuration is returned when the project duration is not a positive
// number of months. Guarded before any division so a zero duration is a
// named error instead of an arithmetic fault.
var ErrInvalidDuration = errors.New("rayleigh: duration must be a positive number of months")

// sigmaFactor places the peak of the curve at 40% of the project duration.
const sigmaFactor = 0.4

// horizonFactor extends the projection to 150% of the estimated duration,
// since defects keep surfacing after the planned end date.
const horizonFactor = 1.5

// Distribute spreads total over floor(duration*1.5) months using the
// Rayleigh density p(t) = t/sigma² · exp(−t²/2sigma²) with
// sigma = duration*0.4. It returns the per-month expected defect counts
// (rounded to 2 decimals) and the matching 1-based month numbers.
//
// The returned series is a truncated curve: its sum approximates but does
// not exactly equal total, because the density's tail beyond the horizon is
// cut off. That undershoot is intentional and must not be renormalized away.
//
// A duration short enough that floor(duration*1.5) < 1 yields two empty
// slices and no error.
func Distribute(total int, durationMonths float64) ([]float64, []int, error) {
	if durationMonths <= 0 || math.IsNaN(durationMonths) || math.IsInf(durationMonths, 0) {
		return nil, nil, ErrInvalidDuration
	}
	if total < 0 {
		return nil, nil, fmt.Errorf("rayleigh: total defect count must be non-negative, got %d", total)
	}

	horizon := int(math.Floor(durationMonths * horizonFactor))
	if horizon < 1 {
		return []float64{}, []int{}, nil
	}

	sigma := durationMonths * sigmaFactor
	sigmaSq := sigma * sigma

	values := make([]float64, 0, horizon)
	months := make([]int, 0, horizon)

	for t := 1; t <= horizon; t++ {
		tf := float64(t)
		density := (tf / sigmaSq) * math.Exp(-(tf*tf)/(2*sigmaSq))
		expected := float64(total) * density
		values = append(values, math.Round(expected*100)/100)
		months = append(months, t)
	}

	return values, months, nil
}
