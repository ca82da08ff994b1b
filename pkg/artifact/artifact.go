// Package artifact persists fitted volume models as versioned JSON blobs.
//
// The on-disk format is self-describing: a format tag and version are checked
// on load so that a truncated, hand-edited, or foreign file fails fast as
// corrupt instead of silently producing garbage predictions.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/defectcast/defectcast/pkg/regression"
)

// FormatTag identifies a defectcast model artifact.
const FormatTag = "defectcast/linear-model"

// FormatVersion is the current artifact schema version.
const FormatVersion = 1

// ErrNotExist is returned by Load when no artifact exists at the path.
// Callers treat this as "not trained yet", never as corruption.
var ErrNotExist = errors.New("artifact: no model artifact at path")

// ErrCorrupt is returned (wrapped) when an artifact exists but cannot be
// deserialized into a valid fitted model.
var ErrCorrupt = errors.New("artifact: model artifact is corrupt")

// Artifact is the durable representation of one fitted model plus its
// training provenance. Immutable once written.
type Artifact struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	RSquared  float64   `json:"rSquared"`
	Samples   int       `json:"samples"`
	TrainedAt time.Time `json:"trainedAt"`
}

// New wraps a fitted model with provenance metadata, ready to Save.
func New(model *regression.LinearModel, rSquared float64, samples int) *Artifact {
	return &Artifact{
		Format:    FormatTag,
		Version:   FormatVersion,
		Slope:     model.Slope,
		Intercept: model.Intercept,
		RSquared:  rSquared,
		Samples:   samples,
		TrainedAt: time.Now().UTC(),
	}
}

// Model reconstructs the fitted model the artifact represents.
func (a *Artifact) Model() *regression.LinearModel {
	return &regression.LinearModel{Slope: a.Slope, Intercept: a.Intercept}
}

// Save serializes the artifact to path, creating missing parent directories
// and overwriting any existing artifact.
func Save(path string, a *Artifact) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}

	return nil
}

// Load reads and validates an artifact from path.
//
// Returns ErrNotExist when the path does not exist, and an error wrapping
// ErrCorrupt when the file exists but is not a valid model artifact (bad
// JSON, wrong format tag or version, or non-finite coefficients).
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	if a.Format != FormatTag {
		return nil, fmt.Errorf("%w: %s: unexpected format tag %q", ErrCorrupt, path, a.Format)
	}
	if a.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, path, a.Version)
	}
	if !isFinite(a.Slope) || !isFinite(a.Intercept) {
		return nil, fmt.Errorf("%w: %s: non-finite coefficients", ErrCorrupt, path)
	}

	return &a, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
