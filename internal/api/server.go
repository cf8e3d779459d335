// Package api exposes the usage engine over a read-only JSON HTTP API.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is the usage API HTTP server.
type Server struct {
	server   *http.Server
	router   *mux.Router
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new API server.
func NewServer(addr string, engine Engine, logger zerolog.Logger) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		logger: logger.With().Str("component", "api").Logger(),
	}
	s.setupRoutes(engine)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(engine Engine) {
	s.router.Use(LoggingMiddleware(s.logger))

	usageHandler := NewUsageHandler(engine, s.logger)
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/app_list", usageHandler.AppList).Methods("GET")
	s.router.HandleFunc("/spent_time", usageHandler.SpentTime).Methods("GET")
	s.router.HandleFunc("/daily_app_usage/{title}", usageHandler.DailyAppUsage).Methods("GET")
	s.router.HandleFunc("/daily_platform_usage", usageHandler.DailyPlatformUsage).Methods("GET")
	s.router.HandleFunc("/dataset_metadata", usageHandler.DatasetMetadata).Methods("GET")
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting API server")

	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated API listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("API server error")
		}
	}()

	return nil
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}

	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "awtally",
		"status":  "ok",
	})
}
