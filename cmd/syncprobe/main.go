package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/angelmondragon/packfinderz-client/internal/health"
	"github.com/angelmondragon/packfinderz-client/internal/session"
	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/internal/transport"
	"github.com/angelmondragon/packfinderz-client/pkg/config"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
	"github.com/angelmondragon/packfinderz-client/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// syncprobe opens the local store, pings the remote API, and prints the
// combined health report. Exit code 1 means the local store is broken.
func main() {
	logg := logger.New(logger.Options{ServiceName: "syncprobe"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "syncprobe",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Store, logg)
	if err != nil {
		logg.Error(ctx, "failed to open local store", err)
		os.Exit(1)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logg.Error(ctx, "error closing local store", err)
		}
	}()

	registry := prometheus.NewRegistry()
	client, err := transport.NewClient(cfg.API, cfg.Retry, logg,
		transport.WithTokenSource(session.NewTokenSource(st)),
		transport.WithMetrics(metrics.NewTransportMetrics(registry)),
	)
	if err != nil {
		logg.Error(ctx, "failed to build transport client", err)
		os.Exit(1)
	}

	checker, err := health.NewChecker(st, client, logg)
	if err != nil {
		logg.Error(ctx, "failed to build health checker", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"base_url": cfg.API.BaseURL,
	})
	logg.Info(ctx, "probing sync layer")

	report, err := checker.Check(ctx)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "probe reported failures")
	}

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logg.Error(ctx, "failed to encode report", err)
		os.Exit(1)
	}
	if _, err := os.Stdout.Write(append(encoded, '\n')); err != nil {
		logg.Error(ctx, "failed to write report", err)
		os.Exit(1)
	}

	if !report.Healthy {
		os.Exit(1)
	}
}
