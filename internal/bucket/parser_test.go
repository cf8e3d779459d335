package bucket

import (
	"testing"

	"github.com/goodtune/awtally/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleExport = `{
  "buckets": {
    "aw-watcher-window_DESKTOP-9NAUUF0": {
      "id": "aw-watcher-window_DESKTOP-9NAUUF0",
      "created": "2024-12-22T09:01:05.443462+00:00",
      "name": null,
      "type": "currentwindow",
      "client": "aw-watcher-window",
      "hostname": "DESKTOP-9NAUUF0",
      "data": {},
      "events": [
        {"timestamp": "2025-01-12T14:26:07.798000+00:00", "duration": 0.0, "data": {"app": "zen.exe", "title": "Zen Browser"}},
        {"timestamp": "2025-01-12T14:26:05.760000+00:00", "duration": 1.018, "data": {"app": "explorer.exe", "title": ""}},
        {"timestamp": "2025-01-12T14:27:00.000000+00:00", "duration": 5, "data": {"title": "no app"}},
        {"timestamp": "2025-01-12T14:28:00.000000+00:00", "duration": -1, "data": {"app": "x.exe", "title": "negative"}},
        {"timestamp": "not a time", "duration": 1, "data": {"app": "x.exe", "title": "bad time"}},
        {"timestamp": "2025-01-12T14:29:00.000000+00:00", "duration": 1, "data": {"app": 42, "title": "numeric app"}},
        "garbage"
      ]
    },
    "aw-watcher-window_cachyos": {
      "hostname": "CachyOS",
      "events": [
        {"timestamp": "2025-01-13T08:00:00+00:00", "duration": 3600, "data": {"app": "code-oss", "title": "main.go"}}
      ]
    },
    "aw-watcher-afk_DESKTOP-9NAUUF0": {
      "hostname": "DESKTOP-9NAUUF0",
      "events": [
        {"timestamp": "2025-01-12T14:26:07.798000+00:00", "duration": 10, "data": {"status": "afk"}}
      ]
    }
  }
}`

func TestParseExtractsWindowEvents(t *testing.T) {
	p := NewParser(zerolog.Nop())

	events, err := p.Parse(Document{Name: "aw-buckets-export.json", Data: []byte(sampleExport)})
	require.NoError(t, err)
	require.Len(t, events, 3)

	byApp := make(map[string]storage.Event)
	for _, e := range events {
		byApp[e.App] = e
	}

	zen := byApp["zen.exe"]
	assert.Equal(t, storage.PlatformWindows, zen.Platform)
	assert.Equal(t, "Zen Browser", zen.Title)
	assert.Equal(t, 0.0, zen.Duration)

	explorer := byApp["explorer.exe"]
	assert.Equal(t, "", explorer.Title)
	assert.InDelta(t, 1.018, explorer.Duration, 1e-9)

	code := byApp["code-oss"]
	assert.Equal(t, storage.PlatformLinux, code.Platform)
	assert.Equal(t, "2025-01-13T08:00:00.000000000Z", storage.FormatTimestamp(code.Timestamp))
}

func TestParseAcceptsISO8601Variants(t *testing.T) {
	doc := Document{Name: "variants.json", Data: []byte(`{"buckets": {"aw-watcher-window_ubuntu": {"hostname": "ubuntu", "events": [
  {"timestamp": "2025-01-12T14:27:00.123456+00:00", "duration": 1, "data": {"app": "rfc3339", "title": ""}},
  {"timestamp": "2025-01-12T14:27:00.123456+0000", "duration": 1, "data": {"app": "basic", "title": ""}},
  {"timestamp": "2025-01-12 14:27:00.123456+00:00", "duration": 1, "data": {"app": "space", "title": ""}},
  {"timestamp": "2025-01-12T14:27:00.123456", "duration": 1, "data": {"app": "naive", "title": ""}},
  {"timestamp": "12/01/2025 14:27", "duration": 1, "data": {"app": "not-iso", "title": ""}}
]}}}`)}

	events, err := NewParser(zerolog.Nop()).Parse(doc)
	require.NoError(t, err)
	require.Len(t, events, 4)

	for _, e := range events {
		assert.Equal(t, "2025-01-12T14:27:00.123456000Z", storage.FormatTimestamp(e.Timestamp), e.App)
	}
}

func TestParseHostnameFallbacks(t *testing.T) {
	p := NewParser(zerolog.Nop())

	doc := `{"buckets": {
	  "aw-watcher-window_a": {"hostname": "workstation-7", "events": [{"timestamp": "2025-01-01T00:00:00Z", "duration": 1, "data": {"app": "a", "title": ""}}]},
	  "aw-watcher-window_b": {"events": [{"timestamp": "2025-01-01T00:00:00Z", "duration": 1, "data": {"app": "b", "title": ""}}]},
	  "aw-watcher-window_c": {"hostname": 17, "events": [{"timestamp": "2025-01-01T00:00:00Z", "duration": 1, "data": {"app": "c", "title": ""}}]}
	}}`

	events, err := p.Parse(Document{Name: "doc", Data: []byte(doc)})
	require.NoError(t, err)
	require.Len(t, events, 3)

	platforms := make(map[string]string)
	for _, e := range events {
		platforms[e.App] = e.Platform
	}
	assert.Equal(t, "workstation-7", platforms["a"])
	assert.Equal(t, storage.PlatformUnknown, platforms["b"])
	assert.Equal(t, storage.PlatformUnknown, platforms["c"])
}

func TestParseInvalidDocument(t *testing.T) {
	p := NewParser(zerolog.Nop())

	_, err := p.Parse(Document{Name: "broken", Data: []byte(`{"buckets": `)})
	assert.Error(t, err)

	_, err = p.Parse(Document{Name: "wrong shape", Data: []byte(`{"buckets": []}`)})
	assert.Error(t, err)
}

func TestParseAllSkipsInvalidDocuments(t *testing.T) {
	p := NewParser(zerolog.Nop())

	events := p.ParseAll([]Document{
		{Name: "broken", Data: []byte("not json")},
		{Name: "good", Data: []byte(sampleExport)},
		{Name: "empty", Data: []byte(`{}`)},
	})
	assert.Len(t, events, 3)
}

func TestParseSkipsMalformedBucket(t *testing.T) {
	p := NewParser(zerolog.Nop())

	doc := `{"buckets": {
	  "aw-watcher-window_bad": {"hostname": "arch", "events": "nope"},
	  "aw-watcher-window_good": {"hostname": "arch", "events": [{"timestamp": "2025-01-01T00:00:00Z", "duration": 2, "data": {"app": "firefox", "title": "t"}}]}
	}}`

	events, err := p.Parse(Document{Name: "doc", Data: []byte(doc)})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "firefox", events[0].App)
	assert.Equal(t, storage.PlatformLinux, events[0].Platform)
}
