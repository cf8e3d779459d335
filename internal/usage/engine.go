// Package usage computes aggregate usage views over stored events.
package usage

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/goodtune/awtally/internal/metrics"
	"github.com/goodtune/awtally/internal/storage"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// DefaultMinDurationHours is the spent-time threshold when none is given
const DefaultMinDurationHours = 10.0

// TitleResolver translates between raw identifiers and display titles.
type TitleResolver interface {
	Title(app string) string
	Lookup(app string) (string, bool)
	Identifiers(title string) []string
	Titles() map[string][]string
}

// Config holds engine configuration
type Config struct {
	MinDurationHours  float64
	UnmappedAsUnknown bool // label unmapped apps Unknown instead of their raw identifier
	CacheSize         int  // 0 disables result caching
}

// Engine answers usage queries against an event store
type Engine struct {
	events   storage.EventStore
	resolver TitleResolver
	config   Config
	cache    *lru.Cache[string, any]
	logger   zerolog.Logger
}

// NewEngine creates a new aggregation engine
func NewEngine(events storage.EventStore, resolver TitleResolver, config Config, logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		events:   events,
		resolver: resolver,
		config:   config,
		logger:   logger.With().Str("component", "usage").Logger(),
	}

	if config.CacheSize > 0 {
		cache, err := lru.New[string, any](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create query cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

// Reset drops cached results. Call it after new events are stored.
func (e *Engine) Reset() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// SpentTime returns the total hours per display title, largest first.
// Only apps whose own total reaches the threshold are counted.
func (e *Engine) SpentTime(ctx context.Context, opts SpentTimeOptions) ([]SpentTimeRow, error) {
	minHours := e.config.MinDurationHours
	if opts.MinHours != nil {
		minHours = *opts.MinHours
	}

	key := cacheKey("spent_time", formatBound(opts.Start), formatBound(opts.End), strconv.FormatFloat(minHours, 'g', -1, 64))
	return cached(e, key, func() ([]SpentTimeRow, error) {
		timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("spent_time"))
		defer timer.ObserveDuration()

		having := minHours * 3600
		rows, err := e.events.Query(ctx, storage.Query{
			Range:     storage.TimeRange{Start: opts.Start, End: opts.End},
			GroupBy:   storage.GroupByApp,
			Aggregate: storage.AggregateSum,
			Having:    &having,
			Order:     storage.OrderValueDesc,
		})
		if err != nil {
			return nil, fmt.Errorf("spent time: %w", err)
		}

		merged := mergeByTitle(resolveTitles(rows, e.displayTitle))

		out := make([]SpentTimeRow, 0, len(merged))
		for _, row := range merged {
			out = append(out, SpentTimeRow{
				Title:         row.Key,
				App:           row.App,
				DurationHours: toHours(row.Seconds),
			})
		}
		sortByDuration(out)

		e.logger.Debug().
			Int("apps", len(rows)).
			Int("titles", len(out)).
			Float64("min_hours", minHours).
			Msg("Calculated spent time")
		return out, nil
	})
}

// DailyUsage returns hours per day for each requested title, with zero rows
// for idle days between a title's first and last active day.
func (e *Engine) DailyUsage(ctx context.Context, titles []string, start, end *time.Time) ([]DailyUsageRow, error) {
	if len(titles) == 0 {
		return []DailyUsageRow{}, nil
	}

	key := cacheKey("daily_usage", formatBound(start), formatBound(end), strings.Join(titles, "\x1f"))
	return cached(e, key, func() ([]DailyUsageRow, error) {
		timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("daily_usage"))
		defer timer.ObserveDuration()

		seen := make(map[string]struct{})
		apps := make([]string, 0, len(titles))
		for _, title := range titles {
			for _, app := range e.resolver.Identifiers(title) {
				if _, ok := seen[app]; ok {
					continue
				}
				seen[app] = struct{}{}
				apps = append(apps, app)
			}
		}

		rows, err := e.events.Query(ctx, storage.Query{
			Range:     storage.TimeRange{Start: start, End: end},
			Apps:      apps,
			GroupBy:   storage.GroupByDateApp,
			Aggregate: storage.AggregateSum,
			Order:     storage.OrderDateAsc,
		})
		if err != nil {
			return nil, fmt.Errorf("daily usage: %w", err)
		}

		merged := mergeByDateTitle(resolveTitles(rows, e.dailyTitle))
		filled := fillDailyGaps(merged)

		out := make([]DailyUsageRow, 0, len(filled))
		for _, row := range filled {
			out = append(out, DailyUsageRow{
				Date:          row.Date,
				Title:         row.Key,
				DurationHours: toHours(row.Seconds),
			})
		}

		e.logger.Debug().
			Strs("titles", titles).
			Int("identifiers", len(apps)).
			Int("rows", len(out)).
			Msg("Calculated daily usage")
		return out, nil
	})
}

// DailyPlatformUsage returns hours per day for each platform, gap-filled
// per platform.
func (e *Engine) DailyPlatformUsage(ctx context.Context, start, end *time.Time) ([]DailyPlatformRow, error) {
	key := cacheKey("daily_platform_usage", formatBound(start), formatBound(end))
	return cached(e, key, func() ([]DailyPlatformRow, error) {
		timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("daily_platform_usage"))
		defer timer.ObserveDuration()

		rows, err := e.events.Query(ctx, storage.Query{
			Range:     storage.TimeRange{Start: start, End: end},
			GroupBy:   storage.GroupByDatePlatform,
			Aggregate: storage.AggregateSum,
			Order:     storage.OrderDateAsc,
		})
		if err != nil {
			return nil, fmt.Errorf("daily platform usage: %w", err)
		}

		identity := func(platform string) string { return platform }
		filled := fillDailyGaps(resolveTitles(rows, identity))

		out := make([]DailyPlatformRow, 0, len(filled))
		for _, row := range filled {
			out = append(out, DailyPlatformRow{
				Date:          row.Date,
				Platform:      row.Key,
				DurationHours: toHours(row.Seconds),
			})
		}
		return out, nil
	})
}

// DatasetMetadata returns the time range and size of the stored dataset.
func (e *Engine) DatasetMetadata(ctx context.Context) (storage.Metadata, error) {
	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("dataset_metadata"))
	defer timer.ObserveDuration()

	meta, err := e.events.Metadata(ctx)
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("dataset metadata: %w", err)
	}
	return meta, nil
}

// ScanMetadata recomputes dataset metadata from every stored event instead
// of the store's summary. Use it to check a store's summary against its
// contents.
func (e *Engine) ScanMetadata(ctx context.Context) (storage.Metadata, error) {
	timer := prometheus.NewTimer(metrics.QueryDuration.WithLabelValues("scan_metadata"))
	defer timer.ObserveDuration()

	events, err := e.events.ReadAll(ctx)
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("scan metadata: %w", err)
	}
	return storage.Summarize(events), nil
}

// ListKnownApps returns every display title with its raw identifiers.
func (e *Engine) ListKnownApps() map[string][]string {
	return e.resolver.Titles()
}

// displayTitle resolves an app for spent-time rows.
func (e *Engine) displayTitle(app string) string {
	if e.config.UnmappedAsUnknown {
		if _, ok := e.resolver.Lookup(app); !ok {
			return UnknownTitle
		}
	}
	if title := e.resolver.Title(app); title != "" {
		return title
	}
	return UnknownTitle
}

// dailyTitle resolves an app for daily rows. Apps mapped to no title keep
// their identifier.
func (e *Engine) dailyTitle(app string) string {
	if title := e.resolver.Title(app); title != "" {
		return title
	}
	return app
}

// cached serves compute's result from the engine cache when possible.
func cached[T any](e *Engine, key string, compute func() ([]T, error)) ([]T, error) {
	if e.cache == nil {
		return compute()
	}

	if v, ok := e.cache.Get(key); ok {
		if rows, ok := v.([]T); ok {
			metrics.QueryCacheHits.Inc()
			return slices.Clone(rows), nil
		}
	}
	metrics.QueryCacheMisses.Inc()

	rows, err := compute()
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, slices.Clone(rows))
	return rows, nil
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, "|")
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return storage.FormatTimestamp(*t)
}
