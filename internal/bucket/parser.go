// Package bucket extracts normalized window events from ActivityWatch
// bucket exports.
package bucket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"github.com/goodtune/awtally/internal/metrics"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/rs/zerolog"
)

// windowBucket matches the bucket names written by aw-watcher-window.
var windowBucket = regexp.MustCompile(`^aw-watcher-window_[A-Za-z0-9-]+`)

// Skip reasons reported in awtally_events_skipped_total.
const (
	skipMalformed = "malformed"
	skipTimestamp = "timestamp"
	skipDuration  = "duration"
	skipApp       = "app"
	skipTitle     = "title"
)

// Document is one export file.
type Document struct {
	Name string
	Data []byte
}

type export struct {
	Buckets map[string]json.RawMessage `json:"buckets"`
}

type rawBucket struct {
	Hostname json.RawMessage   `json:"hostname"`
	Events   []json.RawMessage `json:"events"`
}

type rawEvent struct {
	Timestamp json.RawMessage `json:"timestamp"`
	Duration  json.RawMessage `json:"duration"`
	Data      struct {
		App   json.RawMessage `json:"app"`
		Title json.RawMessage `json:"title"`
	} `json:"data"`
}

// Parser converts export documents into storage events.
type Parser struct {
	logger zerolog.Logger
}

// NewParser creates a bucket parser.
func NewParser(logger zerolog.Logger) *Parser {
	return &Parser{
		logger: logger.With().Str("component", "bucket").Logger(),
	}
}

// ParseAll parses every document and concatenates the results. Documents
// that cannot be decoded are logged and skipped.
func (p *Parser) ParseAll(docs []Document) []storage.Event {
	events := make([]storage.Event, 0)
	for _, doc := range docs {
		parsed, err := p.Parse(doc)
		if err != nil {
			p.logger.Error().Err(err).Str("document", doc.Name).Msg("Skipping invalid export document")
			continue
		}
		events = append(events, parsed...)
	}
	return events
}

// Parse extracts the window events of a single document. Irregular buckets
// and events are skipped with a warning; only an undecodable document
// returns an error.
func (p *Parser) Parse(doc Document) ([]storage.Event, error) {
	var exp export
	if err := json.Unmarshal(doc.Data, &exp); err != nil {
		metrics.DocumentsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("decode export %s: %w", doc.Name, err)
	}
	metrics.DocumentsTotal.WithLabelValues("ok").Inc()

	if exp.Buckets == nil {
		p.logger.Warn().Str("document", doc.Name).Msg("Export has no buckets")
	}

	// Sorted for stable output across runs
	names := make([]string, 0, len(exp.Buckets))
	for name := range exp.Buckets {
		names = append(names, name)
	}
	sort.Strings(names)

	events := make([]storage.Event, 0)
	for _, name := range names {
		if !windowBucket.MatchString(name) {
			p.logger.Debug().Str("bucket", name).Msg("Ignoring non-window bucket")
			continue
		}
		events = append(events, p.parseBucket(doc.Name, name, exp.Buckets[name])...)
	}

	p.logger.Info().
		Str("document", doc.Name).
		Int("events", len(events)).
		Msg("Parsed export document")
	return events, nil
}

func (p *Parser) parseBucket(docName, name string, data json.RawMessage) []storage.Event {
	log := p.logger.With().Str("document", docName).Str("bucket", name).Logger()

	var b rawBucket
	if err := json.Unmarshal(data, &b); err != nil {
		log.Warn().Err(err).Msg("Skipping malformed bucket")
		return nil
	}

	platform := storage.PlatformUnknown
	if hostname, ok := stringValue(b.Hostname); ok && hostname != "" {
		var known bool
		platform, known = ClassifyPlatform(hostname)
		if !known {
			log.Warn().Str("hostname", hostname).Msg("Unknown OS for bucket, using hostname as platform")
		}
	} else {
		log.Warn().Msg("Hostname missing or invalid, using Unknown platform")
	}

	events := make([]storage.Event, 0, len(b.Events))
	for i, raw := range b.Events {
		e, reason := decodeEvent(raw)
		if reason != "" {
			metrics.EventsSkipped.WithLabelValues(reason).Inc()
			log.Warn().Int("index", i).Str("reason", reason).Msg("Skipping event")
			continue
		}
		e.Platform = platform
		events = append(events, e)
	}

	metrics.EventsParsed.WithLabelValues(platform).Add(float64(len(events)))
	return events
}

// decodeEvent returns the event or the reason it was rejected.
func decodeEvent(raw json.RawMessage) (storage.Event, string) {
	var re rawEvent
	if err := json.Unmarshal(raw, &re); err != nil {
		return storage.Event{}, skipMalformed
	}

	var e storage.Event

	ts, ok := stringValue(re.Timestamp)
	if !ok {
		return e, skipTimestamp
	}
	t, err := storage.ParseTimestamp(ts)
	if err != nil {
		return e, skipTimestamp
	}
	e.Timestamp = t

	duration, ok := numberValue(re.Duration)
	if !ok || duration < 0 {
		return e, skipDuration
	}
	e.Duration = duration

	if e.App, ok = stringValue(re.Data.App); !ok {
		return e, skipApp
	}
	if e.Title, ok = stringValue(re.Data.Title); !ok {
		return e, skipTitle
	}
	return e, ""
}

// stringValue decodes a JSON string. Absent, null, and non-string values
// report false.
func stringValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func numberValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, true
}
