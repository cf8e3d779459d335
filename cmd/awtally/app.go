package main

import (
	"context"
	"fmt"

	"github.com/goodtune/awtally/internal/bucket"
	"github.com/goodtune/awtally/internal/config"
	"github.com/goodtune/awtally/internal/ingest"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/goodtune/awtally/internal/storage/bolt"
	"github.com/goodtune/awtally/internal/storage/redis"
	"github.com/goodtune/awtally/internal/storage/sqlite"
	"github.com/goodtune/awtally/internal/titles"
	"github.com/goodtune/awtally/internal/usage"
	"github.com/rs/zerolog"
)

// app bundles the components every command works with.
type app struct {
	cfg    *config.Config
	store  storage.Store
	engine *usage.Engine
	loader *ingest.Loader
	logger zerolog.Logger
}

// newApp opens storage and the title mapping described by cfg and builds
// the usage engine on top of them.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	store, err := openStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := store.Events().EnsureSchema(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	logger.Info().
		Str("type", cfg.Storage.Type).
		Str("path", cfg.Storage.Path).
		Msg("Storage initialized")

	resolver, err := titles.Open(cfg.Titles, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load title mapping: %w", err)
	}

	engine, err := usage.NewEngine(store.Events(), resolver, usage.Config{
		MinDurationHours:  cfg.Query.MinDurationHours,
		UnmappedAsUnknown: cfg.Titles.UnmappedPolicy == "unknown",
		CacheSize:         cfg.Query.CacheSize,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  store,
		engine: engine,
		loader: ingest.NewLoader(bucket.NewParser(logger), cfg.Ingest.FilePrefix, logger),
		logger: logger,
	}, nil
}

// load reads the export directory and drops cached query results.
func (a *app) load(ctx context.Context, force bool) (ingest.Result, error) {
	res, err := ingest.Bootstrap(ctx, a.store.Events(), a.loader, ingest.Options{
		Dir:       a.cfg.Ingest.ExportDir,
		Force:     force,
		BatchSize: a.cfg.Ingest.BatchSize,
	}, a.logger)
	if err != nil {
		return res, err
	}
	a.engine.Reset()
	return res, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close storage")
	}
}

func openStorage(cfg config.StorageConfig) (storage.Store, error) {
	storageType := cfg.Type
	if storageType == "" {
		storageType = "sqlite"
	}

	switch storageType {
	case "sqlite":
		return sqlite.Open(cfg.Path)
	case "bolt":
		return bolt.Open(cfg.Path)
	case "redis":
		return redis.Open(cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// loadApp reads the configuration and opens the app with a configured logger.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	return newApp(ctx, cfg, logger)
}
