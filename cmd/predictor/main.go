// Command predictor serves defect forecasts over a JSON HTTP API.
//
// It loads the linear volume model trained by the trainer command, predicts
// the total defect count for a project from its size, spreads that total
// over the project's months with the Rayleigh distribution, and serves the
// result. When a request names a project, the forecast is also stored as a
// snapshot retrievable via /forecast/current.
//
// Endpoints:
//   - POST /predict - {"size": n, "duration": n, "project": "name"?}
//   - GET /forecast/current?project=<name> - Latest stored forecast
//   - GET /healthz - Liveness check
//   - GET /readyz - Readiness check (requires a loaded model)
//   - GET /metrics - Prometheus metrics
//
// Usage:
//
//	predictor \
//	  -model-path=models/defect_model.json \
//	  -listen=:8080 \
//	  -storage=redis -redis-addr=redis:6379
//
// Environment variables:
//
//	MODEL_PATH   - Model artifact location (default: models/defect_model.json)
//	LISTEN       - HTTP listen address (default: :8080)
//	STORAGE      - Snapshot storage backend: memory or redis (default: memory)
//	REDIS_ADDR   - Redis server address
//	SNAPSHOT_TTL - Forecast snapshot TTL (default: 24h)
//	LOG_LEVEL    - Logging level: debug, info, warn, error (default: info)
//	LOG_FORMAT   - Logging format: text, json (default: text)
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/defectcast/defectcast/cmd/predictor/config"
	"github.com/defectcast/defectcast/cmd/predictor/logger"
	"github.com/defectcast/defectcast/cmd/predictor/metrics"
	"github.com/defectcast/defectcast/cmd/predictor/router"
	"github.com/defectcast/defectcast/cmd/predictor/store"
	"github.com/defectcast/defectcast/pkg/estimator"
	"github.com/defectcast/defectcast/pkg/httpx"
	"github.com/defectcast/defectcast/pkg/tls"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg := config.ParseFlags()

	log := logger.New(cfg)
	slog.SetDefault(log)

	log.Info("starting defectcast predictor",
		"version", version,
		"model_path", cfg.ModelPath,
		"storage", cfg.Storage,
	)

	volume := estimator.New(cfg.ModelPath)
	predictor := estimator.NewPredictor(volume)
	m := metrics.New()

	// Eager load so a missing model is visible at startup. Predictions still
	// retry lazily, so training after startup works without a restart.
	ok, err := volume.Load()
	switch {
	case err != nil:
		log.Error("model artifact is unusable", "path", cfg.ModelPath, "error", err)
		os.Exit(1)
	case !ok:
		log.Warn("no trained model found, predictions will fail until the trainer runs",
			"path", cfg.ModelPath)
		m.SetModelReady(false)
	default:
		meta := volume.Metadata()
		log.Info("model loaded",
			"path", cfg.ModelPath,
			"slope", meta.Slope,
			"intercept", meta.Intercept,
			"r_squared", meta.RSquared,
			"trained_at", meta.TrainedAt,
		)
		m.SetModelReady(true)
		m.SetModelRSquared(meta.RSquared)
	}

	snapshots := store.New(cfg, log)
	if closer, ok := snapshots.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Error("failed to close store", "error", err)
			}
		}()
	}
	if stopper, ok := snapshots.(interface{ Stop() }); ok {
		defer stopper.Stop()
	}

	mux := router.SetupRoutes(predictor, snapshots, m, log)

	handler := httpx.LoggingMiddleware(log)(httpx.RecoveryMiddleware(log)(mux))
	server := httpx.NewServer(cfg.Listen, handler, log)

	if cfg.TLS.Enabled {
		tlsConfig, err := tls.NewServerTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile)
		if err != nil {
			log.Error("failed to create TLS config", "error", err)
			os.Exit(1)
		}
		server.SetTLSConfig(tlsConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLS.Enabled {
			errCh <- server.StartTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			errCh <- server.Start()
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}

	if err := server.Stop(10 * time.Second); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
