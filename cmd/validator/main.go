package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iiasa/ariadne-intern-workflow/internal/adapter/httpadapter"
	kafkaadapter "github.com/iiasa/ariadne-intern-workflow/internal/adapter/kafka"
	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/config"
	"github.com/iiasa/ariadne-intern-workflow/internal/observability"
	"github.com/iiasa/ariadne-intern-workflow/internal/pipeline"
	"github.com/iiasa/ariadne-intern-workflow/internal/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	registry, err := loadProfiles(cfg, logger)
	if err != nil {
		logger.Error("failed to load profiles", "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	validator := pipeline.NewValidator(registry, logger, metrics)

	p := pipeline.New(reader, validator, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:         cfg.HTTPAddr,
		Timeout:      cfg.RequestTimeout,
		MaxBodyBytes: int64(cfg.MaxSubmissionBytes),
	}, p, validator, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start validation pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadProfiles reads the codelists under DEFINITIONS_DIR and binds the
// built-in profiles plus any declared in PROFILES_FILE.
func loadProfiles(cfg *config.Config, logger *slog.Logger) (*profile.Registry, error) {
	set, err := codelist.LoadAvailable(cfg.DefinitionsDir)
	if err != nil {
		return nil, err
	}

	var custom []profile.Spec
	if cfg.ProfilesFile != "" {
		f, err := profile.ReadFile(cfg.ProfilesFile)
		if err != nil {
			return nil, err
		}
		custom = f.Profiles
	}

	registry, err := profile.NewRegistry(set, cfg.DefaultProfile, custom...)
	if err != nil {
		return nil, err
	}
	logger.Info("profiles loaded",
		"definitions", cfg.DefinitionsDir,
		"profiles", registry.Names(),
		"default", registry.Default(),
		"custom", len(custom),
	)
	return registry, nil
}
