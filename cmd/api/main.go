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

	"bulkscan-adjudicator/internal/api"
	"bulkscan-adjudicator/internal/auth"
	"bulkscan-adjudicator/internal/config"
	"bulkscan-adjudicator/internal/metrics"
	"bulkscan-adjudicator/internal/schema"
	"bulkscan-adjudicator/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger(os.Stdout)

	registry, err := loadRegistry(cfg)
	if err != nil {
		logger.Error("load form schemas", "error", err)
		os.Exit(1)
	}

	var audit api.AuditStore
	if cfg.AuditEnabled() {
		store, err := storage.NewPostgresStore(cfg.PostgresDSN)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = store.Ping(ctx)
		cancel()
		if err != nil {
			logger.Error("postgres ping", "error", err)
			os.Exit(1)
		}
		audit = store
	}

	h := api.NewHandler(cfg, registry, auth.NewService(cfg.S2SSigningKey, cfg.AllowedServices), audit, metrics.New(), logger)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(h),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api listening", "port", cfg.HTTPPort, "audit", cfg.AuditEnabled(), "forms", registry.FormTypes())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api stopped with error", "error", err)
		os.Exit(1)
	}
}

func loadRegistry(cfg config.Config) (*schema.Registry, error) {
	if cfg.FormSchemaFile == "" {
		return schema.Default(), nil
	}
	return schema.LoadFile(cfg.FormSchemaFile)
}
