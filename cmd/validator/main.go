// Command validator measures the volume model's accuracy with hold-out
// validation.
//
// It withholds a fraction of the historical projects (20% by default),
// fits a temporary model on the remainder, predicts the withheld projects,
// and reports the per-project comparison plus the mean absolute error and
// hold-out R². No artifact is written; the output is the evidence of how
// far off the model tends to be on unseen projects.
//
// The split is seeded, so repeated runs withhold the same projects.
//
// Usage:
//
//	validator -data=data/historical_projects.csv -test-fraction=0.2 -seed=42
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"

	"github.com/defectcast/defectcast/pkg/dataset"
	"github.com/defectcast/defectcast/pkg/regression"
)

func main() {
	var (
		dataPath     = flag.String("data", getEnv("TRAIN_DATA", "data/historical_projects.csv"), "Historical project CSV path")
		sizeCol      = flag.String("size-column", getEnv("SIZE_COLUMN", "size"), "CSV column holding project size")
		defectsCol   = flag.String("defects-column", getEnv("DEFECTS_COLUMN", "total_defects"), "CSV column holding total defects")
		testFraction = flag.Float64("test-fraction", 0.2, "Share of projects withheld for testing")
		seed         = flag.Int64("seed", 42, "Split shuffle seed (fixed for reproducible runs)")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	samples, err := dataset.LoadCSV(*dataPath, *sizeCol, *defectsCol)
	if err != nil {
		log.Error("failed to load historical data", "error", err)
		os.Exit(1)
	}

	train, test, err := dataset.Split(samples, *testFraction, *seed)
	if err != nil {
		log.Error("failed to split dataset", "error", err)
		os.Exit(1)
	}
	log.Info("dataset split", "train", len(train), "test", len(test))

	// Temporary model, fit only on the training share.
	model, err := regression.Fit(train)
	if err != nil {
		log.Error("model fit failed", "error", err)
		os.Exit(1)
	}

	fmt.Println("HOLD-OUT VALIDATION REPORT")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tACTUAL DEFECTS\tPREDICTED\tABS ERROR")
	for _, s := range test {
		predicted := math.Round(model.Predict(s.Size))
		fmt.Fprintf(w, "%.1f\t%.0f\t%.0f\t%.0f\n",
			s.Size, s.Defects, predicted, math.Abs(s.Defects-predicted))
	}
	w.Flush()

	mae := regression.MeanAbsoluteError(model, test)

	fmt.Println()
	fmt.Printf("Mean absolute error: %.4f defects (typical miss of +/- %d bugs)\n", mae, int(mae))
	fmt.Printf("Hold-out R² score:   %.4f\n", model.RSquared(test))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
