package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goodtune/awtally/internal/config"
	"github.com/goodtune/awtally/internal/usage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = `{"buckets": {"aw-watcher-window_DESKTOP-1": {"hostname": "DESKTOP-1", "events": [
  {"timestamp": "2024-01-01T00:00:00+00:00", "duration": 36000, "data": {"app": "chrome.exe", "title": ""}},
  {"timestamp": "2024-01-01T10:00:00+00:00", "duration": 60, "data": {"app": "explorer.exe", "title": "Downloads"}},
  {"timestamp": "2024-01-03T09:00:00+00:00", "duration": 7200, "data": {"app": "Code.exe", "title": "main.go"}}
]}}}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	exportDir := filepath.Join(dir, "export")
	require.NoError(t, os.Mkdir(exportDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(exportDir, "aw-buckets-export.json"), []byte(export), 0644))

	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(dir, "awtally.db")
	cfg.Ingest.ExportDir = exportDir
	cfg.Titles.AppToTitlePath = filepath.Join(dir, "app_to_title.json")
	cfg.Titles.TitleToAppsPath = filepath.Join(dir, "title_to_apps.json")
	return cfg
}

func TestAppLoadAndQuery(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	meta, err := a.engine.DatasetMetadata(ctx)
	require.NoError(t, err)
	assert.Zero(t, meta.TotalRecords)

	res, err := a.load(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)

	// A second load finds the store populated
	res, err = a.load(ctx, false)
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	rows, err := a.engine.SpentTime(ctx, usage.SpentTimeOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Google Chrome", rows[0].Title)
	assert.Equal(t, 10.0, rows[0].DurationHours)

	meta, err = a.engine.DatasetMetadata(ctx)
	require.NoError(t, err)
	scanned, err := a.engine.ScanMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, scanned.TotalRecords)
	assert.NoError(t, compareMetadata(meta, scanned))

	scanned.TotalRecords++
	assert.Error(t, compareMetadata(meta, scanned))

	daily, err := a.engine.DailyUsage(ctx, []string{"Visual Studio Code"}, nil, nil)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-01-03", daily[0].Date)
	assert.Equal(t, 2.0, daily[0].DurationHours)
}

func TestOpenStorageBackends(t *testing.T) {
	dir := t.TempDir()
	for _, typ := range []string{"sqlite", "bolt"} {
		store, err := openStorage(config.StorageConfig{Type: typ, Path: filepath.Join(dir, typ+".db")})
		require.NoError(t, err, typ)
		assert.NoError(t, store.Close())
	}

	_, err := openStorage(config.StorageConfig{Type: "mongo"})
	assert.Error(t, err)
}

func TestFindUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  api_port: 8001
  dns_port: 53
storage:
  tpye: bolt
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	unknown, err := findUnknownKeys(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"server.dns_port", "storage.tpye"}, unknown)
}

func TestDumpConfigHighlightsModifiedValues(t *testing.T) {
	cfg := config.Default()
	cfg.Server.APIPort = 8001
	cfg.Storage.Redis.Password = "secret"

	var out bytes.Buffer
	dumpConfig(&out, cfg, config.Default())

	assert.Contains(t, out.String(), "api_port = 8001  (modified from default: 8000)")
	assert.Contains(t, out.String(), "password = ***REDACTED***")
	assert.NotContains(t, out.String(), "secret")
}

func TestQueryRange(t *testing.T) {
	queryStart, queryEnd = "2024-01-02", "2024-01-01"
	t.Cleanup(func() { queryStart, queryEnd = "", "" })

	_, _, err := queryRange()
	assert.Error(t, err)

	queryEnd = "2024-01-02"
	start, end, err := queryRange()
	require.NoError(t, err)
	assert.True(t, end.After(*start))
}
