package estimator

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/defectcast/defectcast/pkg/artifact"
	"github.com/defectcast/defectcast/pkg/regression"
)

func perfectLineSamples() []regression.Sample {
	return []regression.Sample{
		{Size: 1, Defects: 10},
		{Size: 2, Defects: 20},
		{Size: 3, Defects: 30},
	}
}

func TestLoad_MissingArtifact(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "missing.json"))

	ok, err := e.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, missing artifact must not be an error", err)
	}
	if ok {
		t.Error("Load() = true for missing artifact, want false")
	}
	if e.Ready() {
		t.Error("estimator ready without a model")
	}
}

func TestLoad_CorruptArtifactSurfaced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeFile(t, path, "not a model artifact")

	e := New(path)
	_, err := e.Load()
	if !errors.Is(err, artifact.ErrCorrupt) {
		t.Errorf("Load() error = %v, want ErrCorrupt", err)
	}
}

func TestFit_MakesReady(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "model.json"))

	if _, err := e.Fit(perfectLineSamples()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if !e.Ready() {
		t.Error("estimator not ready after Fit")
	}

	total, err := e.PredictTotal(4)
	if err != nil {
		t.Fatalf("PredictTotal() error = %v", err)
	}
	if total != 40 {
		t.Errorf("PredictTotal(4) = %d, want 40", total)
	}
}

func TestFit_InsufficientDataPropagated(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "model.json"))

	_, err := e.Fit([]regression.Sample{{Size: 5, Defects: 50}})
	if !errors.Is(err, regression.ErrInsufficientData) {
		t.Errorf("Fit() error = %v, want ErrInsufficientData", err)
	}
	if e.Ready() {
		t.Error("failed fit must not make the estimator ready")
	}
}

func TestPredictTotal_ClampsAndRounds(t *testing.T) {
	// Negative slope pushes large sizes below zero.
	samples := []regression.Sample{
		{Size: 1, Defects: 10},
		{Size: 2, Defects: 5},
		{Size: 3, Defects: 0},
	}

	e := New(filepath.Join(t.TempDir(), "model.json"))
	if _, err := e.Fit(samples); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	total, err := e.PredictTotal(100)
	if err != nil {
		t.Fatalf("PredictTotal() error = %v", err)
	}
	if total != 0 {
		t.Errorf("PredictTotal(100) = %d, want 0 (clamped)", total)
	}

	// Rounding is half away from zero: 2.5·size with size 1 gives 12.5 → 13.
	e2 := New(filepath.Join(t.TempDir(), "model.json"))
	if _, err := e2.Fit([]regression.Sample{{Size: 0, Defects: 10}, {Size: 2, Defects: 15}}); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	total, err = e2.PredictTotal(1) // 2.5*1 + 10 = 12.5
	if err != nil {
		t.Fatalf("PredictTotal() error = %v", err)
	}
	if total != 13 {
		t.Errorf("PredictTotal(1) = %d, want 13 (round half away from zero)", total)
	}
}

func TestPredictTotal_MonotonicForPositiveSlope(t *testing.T) {
	samples := []regression.Sample{
		{Size: 10, Defects: 120},
		{Size: 25, Defects: 260},
		{Size: 40, Defects: 410},
		{Size: 60, Defects: 590},
	}

	e := New(filepath.Join(t.TempDir(), "model.json"))
	if _, err := e.Fit(samples); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	prev := -1
	for size := 0.0; size <= 100; size += 2.5 {
		total, err := e.PredictTotal(size)
		if err != nil {
			t.Fatalf("PredictTotal(%v) error = %v", size, err)
		}
		if total < prev {
			t.Fatalf("PredictTotal not monotonic: size %v gave %d after %d", size, total, prev)
		}
		prev = total
	}
}

func TestPersistLoad_RoundTripIdenticalPredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "defect_model.json")

	fitted := New(path)
	model, err := fitted.Fit(perfectLineSamples())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := fitted.Persist(model, model.RSquared(perfectLineSamples()), 3); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	reloaded := New(path)
	ok, err := reloaded.Load()
	if err != nil || !ok {
		t.Fatalf("Load() = (%v, %v), want (true, nil)", ok, err)
	}

	for _, size := range []float64{0, 1, 3.7, 42, 1000} {
		want, err := fitted.PredictTotal(size)
		if err != nil {
			t.Fatalf("fitted PredictTotal(%v) error = %v", size, err)
		}
		got, err := reloaded.PredictTotal(size)
		if err != nil {
			t.Fatalf("reloaded PredictTotal(%v) error = %v", size, err)
		}
		if got != want {
			t.Errorf("PredictTotal(%v) = %d after reload, want %d", size, got, want)
		}
	}
}

func TestPredictTotal_ImplicitLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	trainAndPersist(t, path)

	e := New(path)
	if e.Ready() {
		t.Fatal("estimator should start unready")
	}

	total, err := e.PredictTotal(4)
	if err != nil {
		t.Fatalf("PredictTotal() error = %v", err)
	}
	if total != 40 {
		t.Errorf("PredictTotal(4) = %d, want 40", total)
	}
	if !e.Ready() {
		t.Error("estimator not ready after implicit load")
	}
}

func TestPredictTotal_ModelNotReady(t *testing.T) {
	e := New(filepath.Join(t.TempDir(), "missing.json"))

	_, err := e.PredictTotal(10)
	if !errors.Is(err, ErrModelNotReady) {
		t.Errorf("PredictTotal() error = %v, want ErrModelNotReady", err)
	}
}

func TestPredictTotal_CorruptArtifactInChain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeFile(t, path, "{broken")

	e := New(path)
	_, err := e.PredictTotal(10)
	if !errors.Is(err, ErrModelNotReady) {
		t.Errorf("PredictTotal() error = %v, want ErrModelNotReady", err)
	}
	if !errors.Is(err, artifact.ErrCorrupt) {
		t.Errorf("PredictTotal() error = %v, corrupt cause must stay in the chain", err)
	}
}

// Readiness never reverts: after a model is installed, a failed reload keeps
// the last-good model serving.
func TestLoad_FailedReloadKeepsLastGoodModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	trainAndPersist(t, path)

	e := New(path)
	if ok, err := e.Load(); !ok || err != nil {
		t.Fatalf("Load() = (%v, %v), want (true, nil)", ok, err)
	}

	writeFile(t, path, "corrupted during retrain")

	if _, err := e.Load(); !errors.Is(err, artifact.ErrCorrupt) {
		t.Fatalf("reload error = %v, want ErrCorrupt", err)
	}

	if !e.Ready() {
		t.Fatal("estimator lost readiness after failed reload")
	}
	total, err := e.PredictTotal(4)
	if err != nil {
		t.Fatalf("PredictTotal() after failed reload error = %v", err)
	}
	if total != 40 {
		t.Errorf("PredictTotal(4) = %d, want 40 from last-good model", total)
	}
}

// Concurrent first use must trigger exactly one deserialization.
func TestPredictTotal_ConcurrentFirstLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	trainAndPersist(t, path)

	e := New(path)

	var loads atomic.Int32
	e.load = func(p string) (*artifact.Artifact, error) {
		loads.Add(1)
		return artifact.Load(p)
	}

	const goroutines = 32

	var wg sync.WaitGroup
	results := make([]int, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.PredictTotal(4)
		}(i)
	}
	wg.Wait()

	for i := 0; i < goroutines; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: PredictTotal() error = %v", i, errs[i])
		}
		if results[i] != 40 {
			t.Errorf("goroutine %d: PredictTotal(4) = %d, want 40", i, results[i])
		}
	}

	if got := loads.Load(); got != 1 {
		t.Errorf("deserializations = %d, want exactly 1", got)
	}
}

func trainAndPersist(t *testing.T, path string) {
	t.Helper()

	model, err := regression.Fit(perfectLineSamples())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if err := artifact.Save(path, artifact.New(model, 1, 3)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
