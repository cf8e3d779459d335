package bolt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goodtune/awtally/internal/storage"
	"go.etcd.io/bbolt"
)

type eventStore struct {
	db *bbolt.DB
}

func (s *eventStore) EnsureSchema(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.ensureBuckets()
}

func (s *eventStore) IsEmpty(ctx context.Context) (bool, error) {
	empty := true
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b, err := eventsBucket(tx)
		if err != nil {
			return err
		}
		k, _ := b.Cursor().First()
		empty = k == nil
		return nil
	})
	return empty, err
}

// InsertAll writes the whole batch in one bolt transaction. Keys sort by
// timestamp first, so range scans can seek.
func (s *eventStore) InsertAll(ctx context.Context, events []storage.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := eventsBucket(tx)
		if err != nil {
			return err
		}
		for _, e := range events {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			key := []byte(storage.NaturalKey(e))
			if b.Get(key) != nil {
				continue
			}
			data, err := marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put(key, data); err != nil {
				return fmt.Errorf("put event: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *eventStore) Query(ctx context.Context, q storage.Query) ([]storage.GroupRow, error) {
	events, err := s.scan(ctx, q.Range)
	if err != nil {
		return nil, err
	}
	return storage.Evaluate(events, q), nil
}

func (s *eventStore) ReadAll(ctx context.Context) ([]storage.Event, error) {
	return s.scan(ctx, storage.TimeRange{})
}

func (s *eventStore) Metadata(ctx context.Context) (storage.Metadata, error) {
	var meta storage.Metadata
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b, err := eventsBucket(tx)
		if err != nil {
			return err
		}
		c := b.Cursor()
		_, first := c.First()
		if first == nil {
			return nil
		}
		_, last := c.Last()

		start, err := unmarshal(first)
		if err != nil {
			return err
		}
		end, err := unmarshal(last)
		if err != nil {
			return err
		}
		meta.StartDate = &start.Timestamp
		meta.EndDate = &end.Timestamp
		meta.TotalRecords = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return storage.Metadata{}, err
	}
	return meta, nil
}

// scan returns every event inside r, seeking to the start bound.
func (s *eventStore) scan(ctx context.Context, r storage.TimeRange) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		b, err := eventsBucket(tx)
		if err != nil {
			return err
		}

		var upper []byte
		if r.End != nil {
			// Every key for the end instant starts with its timestamp followed
			// by the separator, which sorts above any later suffix.
			upper = []byte(storage.FormatTimestamp(*r.End) + "\x1f\xff")
		}

		c := b.Cursor()
		var k, v []byte
		if r.Start != nil {
			k, v = c.Seek([]byte(storage.FormatTimestamp(*r.Start)))
		} else {
			k, v = c.First()
		}
		for ; k != nil; k, v = c.Next() {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if upper != nil && bytes.Compare(k, upper) > 0 {
				break
			}
			e, err := unmarshal(v)
			if err != nil {
				return err
			}
			if !r.Contains(e.Timestamp) {
				continue
			}
			events = append(events, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func eventsBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(bucketEvents))
	if b == nil {
		return nil, fmt.Errorf("events bucket missing: schema not initialized")
	}
	return b, nil
}
