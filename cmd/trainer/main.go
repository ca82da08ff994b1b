// Command trainer fits the defect volume model from historical project data
// and persists it as the artifact the predictor serves from.
//
// Historical data comes from a CSV file (one row per past project, with a
// size column and a total-defects column) or from an HTTP endpoint returning
// JSON, with columns addressed by gjson paths. Run the trainer whenever the
// historical data changes; the predictor picks up the new artifact on its
// next start.
//
// Usage:
//
//	trainer -data=data/historical_projects.csv -model-out=models/defect_model.json
//
//	trainer -source=http -url=https://tracker/api/projects \
//	  -size-path='projects.#.size' -defects-path='projects.#.defects' \
//	  -model-out=models/defect_model.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/defectcast/defectcast/pkg/dataset"
	"github.com/defectcast/defectcast/pkg/estimator"
	"github.com/defectcast/defectcast/pkg/regression"
)

func main() {
	var (
		source      = flag.String("source", getEnv("TRAIN_SOURCE", "csv"), "Dataset source: csv or http")
		dataPath    = flag.String("data", getEnv("TRAIN_DATA", "data/historical_projects.csv"), "Historical project CSV path")
		sizeCol     = flag.String("size-column", getEnv("SIZE_COLUMN", "size"), "CSV column holding project size")
		defectsCol  = flag.String("defects-column", getEnv("DEFECTS_COLUMN", "total_defects"), "CSV column holding total defects")
		url         = flag.String("url", getEnv("TRAIN_URL", ""), "Dataset endpoint URL (source=http)")
		sizePath    = flag.String("size-path", getEnv("SIZE_PATH", "projects.#.size"), "gjson path to sizes (source=http)")
		defectsPath = flag.String("defects-path", getEnv("DEFECTS_PATH", "projects.#.defects"), "gjson path to defect counts (source=http)")
		modelOut    = flag.String("model-out", getEnv("MODEL_OUT", "models/defect_model.json"), "Output path for the model artifact")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	samples, err := loadSamples(*source, *dataPath, *sizeCol, *defectsCol, *url, *sizePath, *defectsPath)
	if err != nil {
		log.Error("failed to load historical data", "error", err)
		os.Exit(1)
	}
	log.Info("historical data loaded", "projects", len(samples))

	vol := estimator.New(*modelOut)
	model, err := vol.Fit(samples)
	if err != nil {
		log.Error("model fit failed", "error", err)
		os.Exit(1)
	}

	r2 := model.RSquared(samples)

	if err := vol.Persist(model, r2, len(samples)); err != nil {
		log.Error("failed to persist model artifact", "error", err)
		os.Exit(1)
	}

	log.Info("model trained and persisted", "path", *modelOut)

	fmt.Printf("Model: defects = %.4f * size + %.4f\n", model.Slope, model.Intercept)
	fmt.Printf("Fit quality (R² score): %.4f over %d projects\n", r2, len(samples))
}

// loadSamples reads the historical projects from the configured source.
func loadSamples(source, dataPath, sizeCol, defectsCol, url, sizePath, defectsPath string) ([]regression.Sample, error) {
	switch source {
	case "csv":
		return dataset.LoadCSV(dataPath, sizeCol, defectsCol)

	case "http":
		if url == "" {
			return nil, fmt.Errorf("-url is required when source=http")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client := &http.Client{Timeout: 30 * time.Second}
		return dataset.FetchJSON(ctx, client, url, sizePath, defectsPath)

	default:
		return nil, fmt.Errorf("invalid source %q: must be csv or http", source)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
