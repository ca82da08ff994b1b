// Package router configures HTTP routes for the predictor's JSON API.
//
// Routes configured:
//   - POST /predict - Estimate total defects and their monthly distribution
//   - GET /forecast/current?project=<name> - Retrieve latest stored forecast
//   - GET /healthz - Liveness check (returns 200 OK)
//   - GET /readyz - Readiness check (503 until a fitted model is loaded)
//   - GET /metrics - Prometheus metrics endpoint
//
// The /predict endpoint accepts {"size": number, "duration": number} plus an
// optional "project" name. When a project is named, the resulting forecast
// is also stored as a snapshot that /forecast/current can serve later.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/defectcast/defectcast/cmd/predictor/metrics"
	"github.com/defectcast/defectcast/pkg/estimator"
	"github.com/defectcast/defectcast/pkg/httpx"
	"github.com/defectcast/defectcast/pkg/rayleigh"
	"github.com/defectcast/defectcast/pkg/storage"
)

var projectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,251}[a-zA-Z0-9])?$`)

// SetupRoutes configures the HTTP endpoints for the predictor.
func SetupRoutes(predictor *estimator.DefectPredictor, store storage.Store, m *metrics.Metrics, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/healthz", httpx.HealthHandler())

	mux.Handle("/readyz", httpx.HealthHandlerWithCheck(func() error {
		if !predictor.Ready() {
			return errors.New("predictive model not loaded")
		}
		return nil
	}))

	mux.HandleFunc("/predict", handlePredict(predictor, store, m, logger))
	mux.HandleFunc("/forecast/current", handleGetForecast(store, logger))

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// predictRequest is the /predict request body. Size and Duration are
// pointers so a missing field (nil) is distinguishable from a zero value;
// a non-numeric JSON value fails decoding with a type error.
type predictRequest struct {
	Size     *float64 `json:"size"`
	Duration *float64 `json:"duration"`
	Project  string   `json:"project"`
}

// predictResponse is the /predict success payload.
type predictResponse struct {
	TotalDefectsEstimated int       `json:"totalDefectsEstimated"`
	Distribution          []float64 `json:"distribution"`
	Months                []int     `json:"months"`
}

// handlePredict returns the handler for POST /predict.
func handlePredict(predictor *estimator.DefectPredictor, store storage.Store, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httpx.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		start := time.Now()

		var req predictRequest
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&req); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) {
				httpx.WriteErrorMessage(w, http.StatusBadRequest, "fields 'size' and 'duration' must be numeric")
			} else {
				httpx.WriteErrorMessage(w, http.StatusBadRequest, "request body must be valid JSON")
			}
			if m != nil {
				m.RecordError("api", "invalid_input")
			}
			return
		}

		if req.Size == nil || req.Duration == nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "missing required fields: 'size' and 'duration'")
			if m != nil {
				m.RecordError("api", "missing_fields")
			}
			return
		}

		if req.Project != "" && !projectNameRegex.MatchString(req.Project) {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "invalid project name format")
			if m != nil {
				m.RecordError("api", "invalid_project")
			}
			return
		}

		forecast, err := predictor.Predict(*req.Size, *req.Duration)
		if err != nil {
			switch {
			case errors.Is(err, estimator.ErrModelUnavailable):
				logger.Error("prediction failed, model unavailable", "error", err)
				httpx.WriteErrorMessage(w, http.StatusServiceUnavailable,
					"predictive model unavailable: train the model before requesting predictions")
				if m != nil {
					m.RecordError("model", "unavailable")
				}
			case errors.Is(err, rayleigh.ErrInvalidDuration):
				httpx.WriteErrorMessage(w, http.StatusBadRequest, "'duration' must be a positive number of months")
				if m != nil {
					m.RecordError("api", "invalid_duration")
				}
			default:
				logger.Error("prediction failed", "error", err)
				httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
				if m != nil {
					m.RecordError("model", "predict_failed")
				}
			}
			return
		}

		if req.Project != "" {
			storeForecast(r.Context(), store, req.Project, *req.Size, *req.Duration, forecast, logger)
		}

		if m != nil {
			m.RecordPredict(time.Since(start).Seconds())
			m.SetEstimatedDefects(forecast.TotalDefects)
			m.SetModelReady(true)
		}

		logger.Debug("prediction served",
			"size", *req.Size,
			"duration", *req.Duration,
			"total_defects", forecast.TotalDefects,
			"months", len(forecast.Months),
		)

		resp := predictResponse{
			TotalDefectsEstimated: forecast.TotalDefects,
			Distribution:          forecast.Distribution,
			Months:                forecast.Months,
		}
		if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

// storeForecast persists the forecast as a project snapshot. Storage failures
// are logged but never fail the prediction response.
func storeForecast(ctx context.Context, store storage.Store, project string, size, duration float64, f estimator.Forecast, logger *slog.Logger) {
	if store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := store.Put(ctx, storage.Snapshot{
		Project:        project,
		Size:           size,
		DurationMonths: duration,
		GeneratedAt:    time.Now().UTC(),
		TotalDefects:   f.TotalDefects,
		Distribution:   f.Distribution,
		Months:         f.Months,
	})
	if err != nil {
		logger.Error("failed to store forecast snapshot", "project", project, "error", err)
	}
}

// handleGetForecast returns the handler for GET /forecast/current?project=<name>.
func handleGetForecast(store storage.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project := r.URL.Query().Get("project")
		if project == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "project parameter required")
			return
		}

		if !projectNameRegex.MatchString(project) {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "invalid project name format")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		snapshot, found, err := store.GetLatest(ctx, project)
		if err != nil {
			logger.Error("failed to get snapshot", "project", project, "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("no forecast stored for project %q", project))
			return
		}

		if err := httpx.WriteJSON(w, http.StatusOK, snapshot); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}
