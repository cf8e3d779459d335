package bolt

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/goodtune/awtally/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	bucketEvents = "events"
	bucketMeta   = "meta"
	keySchema    = "schema_version"
	schemaV1     = "1"
)

// Store implements the storage.Store interface using bbolt.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store.
func Open(path string) (*Store, error) {
	if err := ensureDir(path); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %v", storage.ErrUnavailable, err)
	}

	return &Store{db: db}, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return storage.EnsureDir(dir)
}

// Close closes the underlying store database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Events returns the event store.
func (s *Store) Events() storage.EventStore { return &eventStore{db: s.db} }

func (s *eventStore) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketEvents, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		meta := tx.Bucket([]byte(bucketMeta))
		if meta.Get([]byte(keySchema)) == nil {
			return meta.Put([]byte(keySchema), []byte(schemaV1))
		}
		return nil
	})
}

// record is the persisted form of an event; the timestamp is kept in
// storage.TimestampLayout so keys and values agree.
type record struct {
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
	App       string  `json:"app"`
	Title     string  `json:"title"`
	Platform  string  `json:"platform"`
}

func marshal(e storage.Event) ([]byte, error) {
	data, err := json.Marshal(record{
		Timestamp: storage.FormatTimestamp(e.Timestamp),
		Duration:  e.Duration,
		App:       e.App,
		Title:     e.Title,
		Platform:  e.Platform,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte) (storage.Event, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return storage.Event{}, fmt.Errorf("unmarshal value: %w", err)
	}
	ts, err := storage.ParseTimestamp(r.Timestamp)
	if err != nil {
		return storage.Event{}, err
	}
	return storage.Event{
		Timestamp: ts,
		Duration:  r.Duration,
		App:       r.App,
		Title:     r.Title,
		Platform:  r.Platform,
	}, nil
}
