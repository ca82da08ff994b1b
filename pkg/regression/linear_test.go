package regression

import (
	"errors"
	"math"
	"testing"
)

func TestFit_PerfectLine(t *testing.T) {
	samples := []Sample{
		{Size: 1, Defects: 10},
		{Size: 2, Defects: 20},
		{Size: 3, Defects: 30},
	}

	model, err := Fit(samples)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(model.Slope-10) > 1e-9 {
		t.Errorf("Slope = %v, want 10", model.Slope)
	}
	if math.Abs(model.Intercept) > 1e-9 {
		t.Errorf("Intercept = %v, want 0", model.Intercept)
	}

	if got := model.Predict(4); math.Abs(got-40) > 1e-9 {
		t.Errorf("Predict(4) = %v, want 40", got)
	}
}

func TestFit_InsufficientData(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
	}{
		{"empty", nil},
		{"single sample", []Sample{{Size: 10, Defects: 100}}},
		{"identical sizes", []Sample{
			{Size: 5, Defects: 50},
			{Size: 5, Defects: 60},
			{Size: 5, Defects: 70},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fit(tt.samples); !errors.Is(err, ErrInsufficientData) {
				t.Errorf("Fit() error = %v, want ErrInsufficientData", err)
			}
		})
	}
}

func TestFit_NonFiniteSample(t *testing.T) {
	samples := []Sample{
		{Size: 1, Defects: 10},
		{Size: math.NaN(), Defects: 20},
	}
	if _, err := Fit(samples); err == nil {
		t.Error("Fit() with NaN size should fail")
	}
}

func TestFit_OrderIndependent(t *testing.T) {
	a := []Sample{{1, 12}, {2, 19}, {3, 35}, {4, 41}}
	b := []Sample{{4, 41}, {2, 19}, {1, 12}, {3, 35}}

	ma, err := Fit(a)
	if err != nil {
		t.Fatalf("Fit(a) error = %v", err)
	}
	mb, err := Fit(b)
	if err != nil {
		t.Fatalf("Fit(b) error = %v", err)
	}

	if math.Abs(ma.Slope-mb.Slope) > 1e-9 || math.Abs(ma.Intercept-mb.Intercept) > 1e-9 {
		t.Errorf("coefficients differ by order: (%v,%v) vs (%v,%v)",
			ma.Slope, ma.Intercept, mb.Slope, mb.Intercept)
	}
}

func TestRSquared(t *testing.T) {
	perfect := []Sample{{1, 10}, {2, 20}, {3, 30}}
	model, err := Fit(perfect)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if r2 := model.RSquared(perfect); math.Abs(r2-1) > 1e-9 {
		t.Errorf("RSquared on perfect fit = %v, want 1.0", r2)
	}

	// A noisy dataset must score strictly worse than perfect but above zero
	// when the trend is real.
	noisy := []Sample{{1, 12}, {2, 17}, {3, 34}, {4, 38}, {5, 52}}
	model, err = Fit(noisy)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	r2 := model.RSquared(noisy)
	if r2 <= 0.8 || r2 >= 1 {
		t.Errorf("RSquared on noisy linear data = %v, want in (0.8, 1)", r2)
	}

	if r2 := model.RSquared(nil); r2 != 0 {
		t.Errorf("RSquared(nil) = %v, want 0", r2)
	}
}

func TestMeanAbsoluteError(t *testing.T) {
	model := &LinearModel{Slope: 10, Intercept: 0}

	held := []Sample{
		{Size: 1, Defects: 12}, // error 2
		{Size: 2, Defects: 16}, // error 4
	}

	if mae := MeanAbsoluteError(model, held); math.Abs(mae-3) > 1e-9 {
		t.Errorf("MeanAbsoluteError = %v, want 3", mae)
	}

	if mae := MeanAbsoluteError(model, nil); mae != 0 {
		t.Errorf("MeanAbsoluteError(nil) = %v, want 0", mae)
	}
}
