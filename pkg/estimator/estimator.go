// Package estimator owns the fitted volume model's lifecycle (load, fit,
// persist, predict) and composes it with the Rayleigh temporal distributor
// into the single Predict operation the HTTP layer serves.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/defectcast/defectcast/pkg/artifact"
	"github.com/defectcast/defectcast/pkg/regression"
)

// ErrModelNotReady is returned by PredictTotal when no fitted model is
// loaded and the implicit load attempt also failed.
var ErrModelNotReady = errors.New("estimator: no fitted model available")

// loadFunc reads an artifact from durable storage. Swappable in tests to
// count deserializations and to simulate failures.
type loadFunc func(path string) (*artifact.Artifact, error)

// VolumeEstimator predicts the total defect count of a project from its
// size using a persisted linear model.
//
// The fitted model is loaded lazily on first use and cached for the process
// lifetime. Readiness never reverts: once a model is installed, a later
// failed reload leaves the last-good model serving. Safe for concurrent use;
// after the first successful load, reads take only an RLock on an immutable
// model.
type VolumeEstimator struct {
	path string
	load loadFunc

	mu    sync.RWMutex
	model *regression.LinearModel
	meta  *artifact.Artifact
}

// New creates a VolumeEstimator backed by the model artifact at path.
// No I/O happens until Load, Fit, or the first PredictTotal.
func New(path string) *VolumeEstimator {
	return &VolumeEstimator{path: path, load: artifact.Load}
}

// Load attempts to read the model artifact from disk.
//
// Returns (true, nil) on success, after which the estimator is ready.
// Returns (false, nil) when no artifact exists at the path: not trained yet,
// a recoverable condition. A corrupt artifact is surfaced as an error
// wrapping artifact.ErrCorrupt, never treated as missing.
//
// Load may be called again to pick up a newly trained artifact. A failed
// load never discards an already-installed model: the last-good model keeps
// serving and the failure is reported to the caller.
func (e *VolumeEstimator) Load() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked()
}

// loadLocked performs the actual deserialization. Callers must hold mu.
func (e *VolumeEstimator) loadLocked() (bool, error) {
	a, err := e.load(e.path)
	if err != nil {
		if errors.Is(err, artifact.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	e.model = a.Model()
	e.meta = a
	return true, nil
}

// Fit computes least-squares coefficients over the historical samples and
// installs the resulting model, making the estimator ready. The model is
// not persisted; call Persist to write the artifact.
func (e *VolumeEstimator) Fit(samples []regression.Sample) (*regression.LinearModel, error) {
	model, err := regression.Fit(samples)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.model = model
	e.meta = artifact.New(model, model.RSquared(samples), len(samples))
	e.mu.Unlock()

	return model, nil
}

// Persist writes the model to the estimator's artifact path, creating
// missing parent directories and overwriting any previous artifact.
func (e *VolumeEstimator) Persist(model *regression.LinearModel, rSquared float64, samples int) error {
	return artifact.Save(e.path, artifact.New(model, rSquared, samples))
}

// PredictTotal applies the fitted linear model to size, clamps negative
// estimates to zero, and rounds half away from zero to the nearest integer.
//
// If no model is loaded yet, one load attempt is made; double-checked
// locking guarantees concurrent first calls trigger exactly one
// deserialization. Fails with ErrModelNotReady when the artifact is missing,
// or with the underlying error when the artifact is corrupt.
func (e *VolumeEstimator) PredictTotal(size float64) (int, error) {
	model, err := e.ensureLoaded()
	if err != nil {
		return 0, err
	}

	predicted := model.Predict(size)
	if predicted < 0 {
		return 0, nil
	}

	return int(math.Round(predicted)), nil
}

// Ready reports whether a fitted model is currently installed.
func (e *VolumeEstimator) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model != nil
}

// Metadata returns the provenance of the installed model (nil when unready).
// Exposes the fit quality metric to the reporting boundary.
func (e *VolumeEstimator) Metadata() *artifact.Artifact {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.meta
}

// ensureLoaded returns the installed model, loading it under the write lock
// if necessary. The fast path is a read lock on the already-installed model.
func (e *VolumeEstimator) ensureLoaded() (*regression.LinearModel, error) {
	e.mu.RLock()
	model := e.model
	e.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Another goroutine may have loaded while we waited for the lock.
	if e.model != nil {
		return e.model, nil
	}

	ok, err := e.loadLocked()
	if err != nil {
		// Keep the corrupt-artifact condition in the chain for callers.
		return nil, fmt.Errorf("%w: %w", ErrModelNotReady, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: artifact not found at %s", ErrModelNotReady, e.path)
	}

	return e.model, nil
}
