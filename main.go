package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"

	"pixform/codec"
	"pixform/config"
	"pixform/job"
	"pixform/logger"
	"pixform/records"
	"pixform/routes"
	"pixform/store"
)

func initSentry(cfg *config.SentryConfig) error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Log.File, true); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()
	logger.Info("Starting Pixform server initialization")

	if cfg.Sentry.SentryDSN != "" {
		if err := initSentry(&cfg.Sentry); err != nil {
			logger.Fatalf("sentry.Init: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	logger.Debug("Registering image encoders")
	codec.RegisterDefaults()

	logger.Debug("Opening conversion records database")
	recs, err := records.Open(cfg.RecordsDBPath())
	if err != nil {
		logger.Fatalf("Failed to open records store: %v", err)
	}
	defer recs.Close()
	logger.Info("Records database opened successfully")

	var mirrors *store.Mirrorer
	if len(cfg.Mirrors) > 0 {
		logger.Infof("Starting artifact mirroring to %d backend(s)", len(cfg.Mirrors))
		mirrors = store.NewMirrorer(cfg.Mirrors)
	}

	artifacts := store.New(cfg.Store.DownloadsDir, cfg.Store.DownloadPrefix, mirrors)
	defer artifacts.Close()

	runner := &job.Runner{
		Codec:    codec.NewAdapter(cfg.Limits.MaxPixels),
		Store:    artifacts,
		Recorder: recs,
		Workers:  cfg.Limits.Workers,
	}

	// Retention sweeper for artifacts and records
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.Retention.MaxAgeHours > 0 {
		logger.Infof("Starting retention sweeper (max age %dh)", cfg.Retention.MaxAgeHours)
		go retentionLoop(ctx, artifacts, recs, time.Duration(cfg.Retention.MaxAgeHours)*time.Hour)
	}

	h := routes.New(runner, cfg)
	r := routes.NewRouter(h)

	s := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	logger.Infof("Pixform server starting on port %d", cfg.Server.Port)
	if err := s.ListenAndServe(); err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

// retentionLoop periodically prunes old artifacts from the downloads
// directory and old rows from the records store.
func retentionLoop(ctx context.Context, artifacts *store.Store, recs *records.Store, maxAge time.Duration) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Retention sweeper stopped")
			return
		case <-ticker.C:
			removed, err := artifacts.PruneOlderThan(maxAge)
			if err != nil {
				logger.Errorf("Failed to prune old artifacts: %v", err)
			} else if removed > 0 {
				logger.Infof("Pruned %d artifact(s) older than %v", removed, maxAge)
			}

			if err := recs.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old records: %v", err)
			}
		}
	}
}
