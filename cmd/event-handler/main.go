package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bulkscan-adjudicator/internal/config"
	"bulkscan-adjudicator/internal/events"
	"bulkscan-adjudicator/internal/intake"
	"bulkscan-adjudicator/internal/metrics"
	"bulkscan-adjudicator/internal/schema"
	"bulkscan-adjudicator/internal/storage"
	"bulkscan-adjudicator/internal/transform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)

	registry := schema.Default()
	if cfg.FormSchemaFile != "" {
		if registry, err = schema.LoadFile(cfg.FormSchemaFile); err != nil {
			logger.Error("load form schemas", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	blob, err := storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.MinioBucket)
	if err != nil {
		logger.Error("connect minio", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	opts := []intake.Option{intake.WithMetrics(m)}
	if cfg.AuditEnabled() {
		store, err := storage.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, intake.WithAudit(store))
	}

	processor := intake.NewProcessor(blob, transform.New(registry), cfg.OutcomePrefix, logger, opts...)
	source := events.NewMinioRecordEventSource(blob.Client(), blob.Bucket(), cfg.IntakePrefix, ".json")

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("event-handler listening for exception records", "bucket", cfg.MinioBucket, "prefix", cfg.IntakePrefix, "outcomes", cfg.OutcomePrefix)
		err := source.Run(ctx, processor.Handle)
		stop()
		return err
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("event-handler stopped with error", "error", err)
		os.Exit(1)
	}
}
