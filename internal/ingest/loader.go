// Package ingest loads export directories into an event store.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goodtune/awtally/internal/bucket"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/rs/zerolog"
)

// Loader reads export files from a directory.
type Loader struct {
	parser *bucket.Parser
	prefix string
	logger zerolog.Logger
}

// NewLoader creates a loader for files whose names start with prefix.
func NewLoader(parser *bucket.Parser, prefix string, logger zerolog.Logger) *Loader {
	return &Loader{
		parser: parser,
		prefix: prefix,
		logger: logger.With().Str("component", "ingest").Logger(),
	}
}

// LoadDir parses every matching file in dir. Files that cannot be read or
// decoded are skipped; a directory that cannot be listed is an error.
func (l *Loader) LoadDir(dir string) ([]storage.Event, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read export directory: %w", err)
	}
	l.logger.Info().Str("dir", dir).Int("files", len(entries)).Msg("Scanning export directory")

	docs := make([]bucket.Document, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.HasPrefix(entry.Name(), l.prefix) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Error().Err(err).Str("file", path).Msg("Skipping unreadable export file")
			continue
		}
		l.logger.Debug().Str("file", path).Msg("Processing export file")
		docs = append(docs, bucket.Document{Name: entry.Name(), Data: data})
	}

	events := l.parser.ParseAll(docs)
	l.logger.Info().
		Str("dir", dir).
		Int("documents", len(docs)).
		Int("events", len(events)).
		Msg("Loaded export directory")
	return events, nil
}
