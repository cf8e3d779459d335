package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/goodtune/awtally/internal/storage"
	"github.com/goodtune/awtally/internal/usage"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Engine is the set of core operations the API forwards to.
type Engine interface {
	ListKnownApps() map[string][]string
	SpentTime(ctx context.Context, opts usage.SpentTimeOptions) ([]usage.SpentTimeRow, error)
	DailyUsage(ctx context.Context, titles []string, start, end *time.Time) ([]usage.DailyUsageRow, error)
	DailyPlatformUsage(ctx context.Context, start, end *time.Time) ([]usage.DailyPlatformRow, error)
	DatasetMetadata(ctx context.Context) (storage.Metadata, error)
}

// UsageHandler serves usage queries.
type UsageHandler struct {
	engine Engine
	logger zerolog.Logger
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(engine Engine, logger zerolog.Logger) *UsageHandler {
	return &UsageHandler{
		engine: engine,
		logger: logger.With().Str("handler", "usage").Logger(),
	}
}

// AppList returns every known title with its raw identifiers.
func (h *UsageHandler) AppList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.ListKnownApps())
}

// SpentTime returns total hours per title.
func (h *UsageHandler) SpentTime(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	opts := usage.SpentTimeOptions{Start: start, End: end}
	if v := r.URL.Query().Get("min_hours"); v != "" {
		minHours, err := strconv.ParseFloat(v, 64)
		if err != nil || minHours < 0 {
			writeError(w, http.StatusBadRequest, "min_hours must be a non-negative number")
			return
		}
		opts.MinHours = &minHours
	}

	rows, err := h.engine.SpentTime(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to calculate spent time")
		writeError(w, http.StatusInternalServerError, "Failed to calculate spent time")
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// DailyAppUsage returns the daily series of the title in the path plus any
// extra title query parameters.
func (h *UsageHandler) DailyAppUsage(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	titles := []string{mux.Vars(r)["title"]}
	titles = append(titles, r.URL.Query()["title"]...)

	rows, err := h.engine.DailyUsage(r.Context(), titles, start, end)
	if err != nil {
		h.logger.Error().Err(err).Strs("titles", titles).Msg("Failed to calculate daily app usage")
		writeError(w, http.StatusInternalServerError, "Failed to calculate daily app usage")
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// DailyPlatformUsage returns the daily series per platform.
func (h *UsageHandler) DailyPlatformUsage(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	rows, err := h.engine.DailyPlatformUsage(r.Context(), start, end)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to calculate daily platform usage")
		writeError(w, http.StatusInternalServerError, "Failed to calculate daily platform usage")
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// DatasetMetadata returns the stored dataset range and size.
func (h *UsageHandler) DatasetMetadata(w http.ResponseWriter, r *http.Request) {
	meta, err := h.engine.DatasetMetadata(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read dataset metadata")
		writeError(w, http.StatusInternalServerError, "Failed to read dataset metadata")
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// parseRange reads the optional start and end query parameters, writing a
// 400 response when either is invalid.
func (h *UsageHandler) parseRange(w http.ResponseWriter, r *http.Request) (*time.Time, *time.Time, bool) {
	q := r.URL.Query()

	start, err := usage.ParseBound(q.Get("start"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start: "+err.Error())
		return nil, nil, false
	}
	end, err := usage.ParseBound(q.Get("end"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end: "+err.Error())
		return nil, nil, false
	}
	if start != nil && end != nil && end.Before(*start) {
		writeError(w, http.StatusBadRequest, "end must not be before start")
		return nil, nil, false
	}
	return start, end, true
}
