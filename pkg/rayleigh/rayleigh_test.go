package rayleigh

import (
	"errors"
	"math"
	"testing"
)

func TestDistribute_LengthAndMonths(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		duration    float64
		wantHorizon int
	}{
		{"ten months", 100, 10, 15},
		{"fractional duration floors", 50, 7.5, 11}, // floor(7.5*1.5) = floor(11.25)
		{"one month", 10, 1, 1},
		{"two months", 10, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, months, err := Distribute(tt.total, tt.duration)
			if err != nil {
				t.Fatalf("Distribute() error = %v", err)
			}

			if len(values) != tt.wantHorizon || len(months) != tt.wantHorizon {
				t.Fatalf("lengths = (%d, %d), want %d", len(values), len(months), tt.wantHorizon)
			}

			for i, m := range months {
				if m != i+1 {
					t.Errorf("months[%d] = %d, want %d", i, m, i+1)
				}
			}
		})
	}
}

// Known curve: duration 10 gives sigma 4 and horizon 15; the first month's
// density is (1/16)·exp(−1/32) ≈ 0.060577, so 100 defects put 6.06 in
// month 1 after 2-decimal rounding.
func TestDistribute_KnownCurve(t *testing.T) {
	values, months, err := Distribute(100, 10)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if len(values) != 15 {
		t.Fatalf("len(values) = %d, want 15", len(values))
	}
	if months[0] != 1 || months[14] != 15 {
		t.Errorf("months = [%d..%d], want [1..15]", months[0], months[14])
	}

	if values[0] != 6.06 {
		t.Errorf("values[0] = %v, want 6.06", values[0])
	}

	// Peak lands near sigma (month 4), then decays.
	peak := 0
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
	}
	if months[peak] != 4 {
		t.Errorf("peak month = %d, want 4 (sigma)", months[peak])
	}
	if values[14] >= values[peak] {
		t.Error("curve should decay after its peak")
	}
}

// The truncated curve deliberately undershoots the total; the sum must stay
// below it and must not be renormalized to match.
func TestDistribute_TruncatedSumUndershoots(t *testing.T) {
	total := 1000
	values, _, err := Distribute(total, 10)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	if sum >= float64(total) {
		t.Errorf("sum = %v, want < %d (truncated tail)", sum, total)
	}
	if sum < float64(total)*0.9 {
		t.Errorf("sum = %v, suspiciously far below %d", sum, total)
	}
}

func TestDistribute_ZeroTotal(t *testing.T) {
	values, months, err := Distribute(0, 10)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	if len(values) != 15 || len(months) != 15 {
		t.Fatalf("lengths = (%d, %d), want 15", len(values), len(months))
	}
	for i, v := range values {
		if v != 0 {
			t.Errorf("values[%d] = %v, want 0", i, v)
		}
	}
}

func TestDistribute_InvalidDuration(t *testing.T) {
	for _, duration := range []float64{0, -1, -0.5, math.NaN(), math.Inf(1)} {
		if _, _, err := Distribute(10, duration); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Distribute(10, %v) error = %v, want ErrInvalidDuration", duration, err)
		}
	}
}

func TestDistribute_NegativeTotal(t *testing.T) {
	if _, _, err := Distribute(-1, 10); err == nil {
		t.Error("Distribute(-1, 10) should fail")
	}
}

// A duration below 2/3 month floors to a zero-length horizon: defined as two
// empty sequences, not an error.
func TestDistribute_SubMonthHorizon(t *testing.T) {
	values, months, err := Distribute(100, 0.5)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}
	if len(values) != 0 || len(months) != 0 {
		t.Errorf("lengths = (%d, %d), want empty", len(values), len(months))
	}
	if values == nil || months == nil {
		t.Error("expected empty slices, not nil")
	}
}

func TestDistribute_TwoDecimalRounding(t *testing.T) {
	values, _, err := Distribute(137, 9.7)
	if err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	for i, v := range values {
		if rounded := math.Round(v*100) / 100; rounded != v {
			t.Errorf("values[%d] = %v, not rounded to 2 decimals", i, v)
		}
	}
}
