package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/defectcast/defectcast/pkg/regression"
)

// Split partitions samples into a training set and a held-out test set for
// validation. testFraction is the share withheld for testing (e.g. 0.2).
//
// The split is deterministic for a given seed: samples are shuffled with a
// seeded source before partitioning, so repeated validation runs hold out
// the same projects. The input slice is not modified.
func Split(samples []regression.Sample, testFraction float64, seed int64) (train, test []regression.Sample, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("dataset: test fraction must be in (0, 1), got %v", testFraction)
	}

	shuffled := make([]regression.Sample, len(samples))
	copy(shuffled, samples)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	testSize := int(math.Round(float64(len(shuffled)) * testFraction))
	if testSize < 1 && len(shuffled) > 0 {
		testSize = 1
	}
	if testSize >= len(shuffled) {
		return nil, nil, fmt.Errorf("dataset: %d samples leave no training data after withholding %d", len(shuffled), testSize)
	}

	split := len(shuffled) - testSize
	return shuffled[:split], shuffled[split:], nil
}
