package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/goodtune/awtally/internal/storage"
)

func TestEventStoreInsertIgnoresDuplicates(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	events := store.Events()
	batch := []storage.Event{
		{Timestamp: ts(t, "2024-01-01T10:00:00Z"), Duration: 60, App: "chrome.exe", Title: "Inbox", Platform: storage.PlatformWindows},
		{Timestamp: ts(t, "2024-01-01T10:01:00Z"), Duration: 30, App: "Code.exe", Title: "", Platform: storage.PlatformWindows},
	}

	inserted, err := events.InsertAll(context.Background(), batch)
	if err != nil {
		t.Fatalf("insert events: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted events, got %d", inserted)
	}

	inserted, err = events.InsertAll(context.Background(), batch)
	if err != nil {
		t.Fatalf("re-insert events: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected re-insert to be ignored, got %d new rows", inserted)
	}

	all, err := events.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(all))
	}
}

func TestEventStoreIsEmpty(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	events := store.Events()
	empty, err := events.IsEmpty(context.Background())
	if err != nil {
		t.Fatalf("is empty: %v", err)
	}
	if !empty {
		t.Fatal("expected new store to be empty")
	}

	if _, err := events.InsertAll(context.Background(), []storage.Event{
		{Timestamp: ts(t, "2024-01-01T10:00:00Z"), Duration: 1, App: "zen.exe", Platform: storage.PlatformWindows},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	empty, err = events.IsEmpty(context.Background())
	if err != nil {
		t.Fatalf("is empty: %v", err)
	}
	if empty {
		t.Fatal("expected store with one event not to be empty")
	}
}

func TestEventStoreQueryRange(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	events := store.Events()
	if _, err := events.InsertAll(context.Background(), []storage.Event{
		{Timestamp: ts(t, "2024-01-01T10:00:00Z"), Duration: 100, App: "a"},
		{Timestamp: ts(t, "2024-01-02T10:00:00Z"), Duration: 200, App: "a"},
		{Timestamp: ts(t, "2024-01-03T10:00:00Z"), Duration: 400, App: "a"},
		{Timestamp: ts(t, "2024-01-02T10:00:00Z"), Duration: 50, App: "b"},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	start := ts(t, "2024-01-02T10:00:00Z")
	end := ts(t, "2024-01-02T10:00:00Z")
	rows, err := events.Query(context.Background(), storage.Query{
		Range:   storage.TimeRange{Start: &start, End: &end},
		GroupBy: storage.GroupByApp,
	})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 groups inside inclusive range, got %d", len(rows))
	}
	if rows[0].Key != "a" || rows[0].Value != 200 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestEventStoreMetadata(t *testing.T) {
	store := openTestStore(t)
	defer func() { _ = store.Close() }()

	events := store.Events()
	meta, err := events.Metadata(context.Background())
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.StartDate != nil || meta.EndDate != nil || meta.TotalRecords != 0 {
		t.Fatalf("expected empty metadata, got %+v", meta)
	}

	if _, err := events.InsertAll(context.Background(), []storage.Event{
		{Timestamp: ts(t, "2024-03-05T08:00:00+02:00"), Duration: 1, App: "a"},
		{Timestamp: ts(t, "2024-01-01T00:00:00Z"), Duration: 1, App: "b"},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	meta, err = events.Metadata(context.Background())
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.TotalRecords != 2 {
		t.Fatalf("expected 2 records, got %d", meta.TotalRecords)
	}
	if !meta.StartDate.Equal(ts(t, "2024-01-01T00:00:00Z")) {
		t.Fatalf("unexpected start date %v", meta.StartDate)
	}
	if !meta.EndDate.Equal(ts(t, "2024-03-05T06:00:00Z")) {
		t.Fatalf("unexpected end date %v", meta.EndDate)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "awtally.bolt")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Events().EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return store
}

func ts(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}
