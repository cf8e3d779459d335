package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Ingestion metrics
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awtally_documents_total",
			Help: "Export documents processed by the bucket parser",
		},
		[]string{"status"},
	)

	EventsParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awtally_events_parsed_total",
			Help: "Window events normalized from export buckets",
		},
		[]string{"platform"},
	)

	EventsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "awtally_events_skipped_total",
			Help: "Window events dropped during parsing",
		},
		[]string{"reason"},
	)

	EventsInserted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "awtally_events_inserted_total",
			Help: "Events newly written to the event store",
		},
	)

	// Query metrics
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "awtally_query_duration_seconds",
			Help:    "Aggregation query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	QueryCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "awtally_query_cache_hits_total",
			Help: "Aggregation results served from cache",
		},
	)

	QueryCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "awtally_query_cache_misses_total",
			Help: "Aggregation results computed from the store",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(
		DocumentsTotal,
		EventsParsed,
		EventsSkipped,
		EventsInserted,
		QueryDuration,
		QueryCacheHits,
		QueryCacheMisses,
	)
}

// HealthCheck reports whether the service can answer queries.
type HealthCheck func(ctx context.Context) error

// Server serves /metrics and /health
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // Optional pre-created listener (for systemd socket activation)
}

// NewServer creates a new metrics server. A nil check makes /health
// always report OK.
func NewServer(addr string, check HealthCheck, logger zerolog.Logger) *Server {
	s := &Server{
		logger: logger.With().Str("component", "metrics").Logger(),
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.health(check))

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the metrics HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) health(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("Health check failed")
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start serves in the background. Serve errors are logged.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting metrics server")
	go func() {
		var err error
		if s.listener != nil {
			s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
			err = s.server.Serve(s.listener)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop shuts the server down, waiting briefly for scrapes in flight.
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
