package storage

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing store cannot be opened or reached.
var ErrUnavailable = errors.New("storage: store unavailable")

// Store represents the root storage interface.
type Store interface {
	Close() error
	Events() EventStore
}

// EventStore persists normalized events idempotently and answers grouped
// aggregate queries over them.
type EventStore interface {
	// EnsureSchema creates the event table if absent. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error
	IsEmpty(ctx context.Context) (bool, error)
	// InsertAll inserts events with insert-or-ignore semantics on
	// (timestamp, app, title) and returns how many rows were new.
	InsertAll(ctx context.Context, events []Event) (int, error)
	Query(ctx context.Context, q Query) ([]GroupRow, error)
	// ReadAll returns every stored event in timestamp order. It backs
	// diagnostic full scans, not the aggregate queries.
	ReadAll(ctx context.Context) ([]Event, error)
	Metadata(ctx context.Context) (Metadata, error)
}
