package titles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goodtune/awtally/internal/config"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/rs/zerolog"
)

// Open builds the resolver described by cfg.
//
// When both flattened files exist they are reused as they are. Otherwise
// the mapping is built from cfg.Source (or the built-in catalogue) and the
// flattened files are written for next time. A configured source that
// does not exist is an error.
func Open(cfg config.TitlesConfig, logger zerolog.Logger) (*Resolver, error) {
	logger = logger.With().Str("component", "titles").Logger()

	if cfg.Source != "" {
		if _, err := os.Stat(cfg.Source); err != nil {
			return nil, fmt.Errorf("title mapping source: %w", err)
		}
	}

	if m, ok, err := readPersisted(cfg.AppToTitlePath, cfg.TitleToAppsPath); err != nil {
		return nil, err
	} else if ok {
		logger.Info().
			Str("app_to_title", cfg.AppToTitlePath).
			Str("title_to_apps", cfg.TitleToAppsPath).
			Int("apps", len(m.AppToTitle)).
			Msg("Reusing persisted title mapping")
		return NewResolver(m), nil
	}

	entries := DefaultEntries()
	if cfg.Source != "" {
		var err error
		if entries, err = Load(cfg.Source); err != nil {
			return nil, err
		}
		logger.Info().Str("source", cfg.Source).Int("entries", len(entries)).Msg("Loaded title mapping")
	} else {
		logger.Info().Int("entries", len(entries)).Msg("Using built-in title mapping")
	}

	m := Flatten(entries)
	if cfg.AppToTitlePath != "" {
		if err := writeJSON(cfg.AppToTitlePath, appToTitleFile(m.AppToTitle)); err != nil {
			logger.Error().Err(err).Str("path", cfg.AppToTitlePath).Msg("Failed to save app to title mapping")
		}
	}
	if cfg.TitleToAppsPath != "" {
		if err := writeJSON(cfg.TitleToAppsPath, m.TitleToApps); err != nil {
			logger.Error().Err(err).Str("path", cfg.TitleToAppsPath).Msg("Failed to save title to apps mapping")
		}
	}

	return NewResolver(m), nil
}

// readPersisted loads both flattened files. ok is false unless both exist.
func readPersisted(appToTitlePath, titleToAppsPath string) (Mapping, bool, error) {
	if appToTitlePath == "" || titleToAppsPath == "" {
		return Mapping{}, false, nil
	}
	if !exists(appToTitlePath) || !exists(titleToAppsPath) {
		return Mapping{}, false, nil
	}

	var forward map[string]*string
	if err := readJSON(appToTitlePath, &forward); err != nil {
		return Mapping{}, false, err
	}
	var reverse map[string][]string
	if err := readJSON(titleToAppsPath, &reverse); err != nil {
		return Mapping{}, false, err
	}

	m := Mapping{
		AppToTitle:  make(map[string]string, len(forward)),
		TitleToApps: reverse,
	}
	for app, title := range forward {
		m.AppToTitle[app] = deref(title)
	}
	return m, true, nil
}

// appToTitleFile writes identifiers without a title as null.
func appToTitleFile(m map[string]string) map[string]*string {
	out := make(map[string]*string, len(m))
	for app, title := range m {
		if title == "" {
			out[app] = nil
			continue
		}
		t := title
		out[app] = &t
	}
	return out
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	if err := storage.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
