package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/goodtune/awtally/internal/api"
	"github.com/goodtune/awtally/internal/config"
	"github.com/goodtune/awtally/internal/metrics"
	"github.com/goodtune/awtally/internal/systemd"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the usage API server",
	Long: `Load the export directory if the event store is empty, then serve the usage
API and metrics endpoints. SIGHUP re-reads the export directory.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", version).
		Str("config", configPath).
		Msg("Starting awtally")

	// Check for systemd socket activation
	sdListeners, err := systemd.GetListeners()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to get systemd listeners")
	}
	if sdListeners.Activated {
		logger.Info().Msg("Running with systemd socket activation")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Ingest.OnStartup {
		res, err := a.load(ctx, false)
		if err != nil {
			return fmt.Errorf("failed to load exports: %w", err)
		}
		logger.Info().
			Int("parsed", res.Parsed).
			Int("inserted", res.Inserted).
			Bool("skipped", res.Skipped).
			Msg("Initial load finished")
	}

	// Initialize API Server
	apiAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.APIPort)
	apiServer := api.NewServer(apiAddr, a.engine, logger)

	if sdListeners.Activated && sdListeners.API != nil {
		apiServer.SetListener(sdListeners.API)
	}

	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API Server: %w", err)
	}

	logger.Info().
		Str("addr", apiAddr).
		Msg("API Server started")

	// Initialize Metrics Server
	metricsAddr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.MetricsPort)
	metricsServer := metrics.NewServer(metricsAddr, func(ctx context.Context) error {
		_, err := a.store.Events().IsEmpty(ctx)
		return err
	}, logger)

	if sdListeners.Activated && sdListeners.Metrics != nil {
		metricsServer.SetListener(sdListeners.Metrics)
	}

	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("failed to start Metrics Server: %w", err)
	}

	logger.Info().
		Str("addr", metricsAddr).
		Msg("Metrics Server started")

	logger.Info().Msg("awtally startup complete")

	if err := systemd.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd ready notification")
	} else {
		logger.Debug().Msg("Sent systemd ready notification")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		sig := <-sigChan

		if sig == syscall.SIGHUP {
			logger.Info().Msg("SIGHUP received, reloading exports...")
			res, err := a.load(ctx, true)
			if err != nil {
				logger.Error().Err(err).Msg("Failed to reload exports")
			} else {
				logger.Info().
					Int("parsed", res.Parsed).
					Int("inserted", res.Inserted).
					Msg("Exports reloaded")
			}
			continue
		}

		logger.Info().Msg("Shutdown signal received, gracefully stopping...")
		break
	}

	if err := systemd.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to send systemd stopping notification")
	}

	if err := apiServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping API Server")
	}

	if err := metricsServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping Metrics Server")
	}

	logger.Info().Msg("awtally stopped")

	return nil
}
