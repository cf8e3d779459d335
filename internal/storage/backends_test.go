package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/goodtune/awtally/internal/config"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/goodtune/awtally/internal/storage/bolt"
	"github.com/goodtune/awtally/internal/storage/redis"
	"github.com/goodtune/awtally/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]storage.Store {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := sqlite.Open(filepath.Join(dir, "awtally.db"))
	require.NoError(t, err)

	boltStore, err := bolt.Open(filepath.Join(dir, "awtally.bolt"))
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisStore, err := redis.Open(config.RedisConfig{
		Host:         mr.Addr(),
		PoolSize:     4,
		DialTimeout:  "5s",
		ReadTimeout:  "3s",
		WriteTimeout: "3s",
	})
	require.NoError(t, err)

	stores := map[string]storage.Store{
		"sqlite": sqliteStore,
		"bolt":   boltStore,
		"redis":  redisStore,
	}
	for _, s := range stores {
		t.Cleanup(func() { _ = s.Close() })
		require.NoError(t, s.Events().EnsureSchema(context.Background()))
	}
	return stores
}

func TestBackendsAgree(t *testing.T) {
	ctx := context.Background()
	parse := func(v string) storage.Event {
		ts, err := storage.ParseTimestamp(v)
		require.NoError(t, err)
		return storage.Event{Timestamp: ts}
	}

	var events []storage.Event
	add := func(ts string, duration float64, app, title, platform string) {
		e := parse(ts)
		e.Duration, e.App, e.Title, e.Platform = duration, app, title, platform
		events = append(events, e)
	}
	add("2024-02-01T08:00:00Z", 3600, "Code.exe", "a.go", storage.PlatformWindows)
	add("2024-02-01T09:00:00.25+01:00", 1200, "code-oss", "b.go", storage.PlatformLinux)
	add("2024-02-01T23:30:00-02:00", 600, "firefox", "", storage.PlatformLinux)
	add("2024-02-03T12:00:00Z", 7200, "Code.exe", "c.go", storage.PlatformWindows)
	add("2024-02-03T12:00:00Z", 60, "Code.exe", "d.go", storage.PlatformWindows)

	start, err := storage.ParseTimestamp("2024-02-01T08:00:00Z")
	require.NoError(t, err)
	having := 1200.0

	queries := []storage.Query{
		{GroupBy: storage.GroupByApp},
		{GroupBy: storage.GroupByApp, Having: &having},
		{GroupBy: storage.GroupByDateApp, Order: storage.OrderDateAsc},
		{GroupBy: storage.GroupByDateApp, Apps: []string{"Code.exe"}, Order: storage.OrderDateAsc},
		{GroupBy: storage.GroupByDatePlatform, Aggregate: storage.AggregateCount, Order: storage.OrderDateAsc},
		{GroupBy: storage.GroupByApp, Range: storage.TimeRange{Start: &start, End: &start}},
	}

	results := make(map[string][][]storage.GroupRow)
	for name, s := range openBackends(t) {
		n, err := s.Events().InsertAll(ctx, events)
		require.NoError(t, err, name)
		assert.Equal(t, len(events), n, name)

		for _, q := range queries {
			rows, err := s.Events().Query(ctx, q)
			require.NoError(t, err, name)
			results[name] = append(results[name], rows)
		}

		meta, err := s.Events().Metadata(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, len(events), meta.TotalRecords, name)
	}

	want := make([][]storage.GroupRow, 0, len(queries))
	for _, q := range queries {
		want = append(want, storage.Evaluate(events, q))
	}
	for name, got := range results {
		assert.Equal(t, want, got, name)
	}

	// The late-evening -02:00 event belongs to the next UTC day
	assert.Contains(t, results["sqlite"][2], storage.GroupRow{Date: "2024-02-02", Key: "firefox", Value: 600})
}

func TestBackendsKeepDistinctNaturalKeys(t *testing.T) {
	ctx := context.Background()
	ts, err := storage.ParseTimestamp("2024-02-01T08:00:00.000000100Z")
	require.NoError(t, err)
	later, err := storage.ParseTimestamp("2024-02-01T08:00:00.000000200Z")
	require.NoError(t, err)

	events := []storage.Event{
		{Timestamp: ts, Duration: 1, App: "a\x1fb", Title: "c"},
		{Timestamp: ts, Duration: 2, App: "a", Title: "b\x1fc"},
		{Timestamp: ts, Duration: 3, App: "x", Title: "y"},
		{Timestamp: later, Duration: 4, App: "x", Title: "y"},
	}

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			n, err := s.Events().InsertAll(ctx, events)
			require.NoError(t, err)
			assert.Equal(t, len(events), n)

			stored, err := s.Events().ReadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, stored, len(events))

			rows, err := s.Events().Query(ctx, storage.Query{GroupBy: storage.GroupByApp, Order: storage.OrderValueDesc})
			require.NoError(t, err)
			assert.Equal(t, []storage.GroupRow{
				{Key: "x", Value: 7},
				{Key: "a", Value: 2},
				{Key: "a\x1fb", Value: 1},
			}, rows)
		})
	}
}
