package ingest

import (
	"context"
	"fmt"

	"github.com/goodtune/awtally/internal/metrics"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/rs/zerolog"
)

// Source produces the events found in an export directory.
type Source interface {
	LoadDir(dir string) ([]storage.Event, error)
}

// Options controls a bootstrap run.
type Options struct {
	Dir       string
	Force     bool // load even when the store already holds events
	BatchSize int
}

// Result reports what a bootstrap run did.
type Result struct {
	Parsed   int  `json:"parsed"`
	Inserted int  `json:"inserted"`
	Skipped  bool `json:"skipped"`
}

// Bootstrap prepares the store schema and, when the store is empty or
// opts.Force is set, loads opts.Dir into it. Inserts ignore events that
// are already stored, so repeated runs never change totals.
func Bootstrap(ctx context.Context, store storage.EventStore, src Source, opts Options, logger zerolog.Logger) (Result, error) {
	logger = logger.With().Str("component", "ingest").Logger()

	var res Result
	if err := store.EnsureSchema(ctx); err != nil {
		return res, err
	}

	if !opts.Force {
		empty, err := store.IsEmpty(ctx)
		if err != nil {
			return res, err
		}
		if !empty {
			logger.Info().Msg("Event store already populated, skipping initial load")
			res.Skipped = true
			return res, nil
		}
		logger.Info().Msg("Event store is empty, inserting exported data")
	}

	events, err := src.LoadDir(opts.Dir)
	if err != nil {
		return res, err
	}
	res.Parsed = len(events)

	batch := opts.BatchSize
	if batch <= 0 {
		batch = len(events)
	}
	for start := 0; start < len(events); start += batch {
		end := min(start+batch, len(events))
		n, err := store.InsertAll(ctx, events[start:end])
		if err != nil {
			return res, fmt.Errorf("insert batch %d-%d: %w", start, end, err)
		}
		res.Inserted += n
		metrics.EventsInserted.Add(float64(n))
	}

	logger.Info().
		Int("parsed", res.Parsed).
		Int("inserted", res.Inserted).
		Msg("Ingestion complete")
	return res, nil
}
