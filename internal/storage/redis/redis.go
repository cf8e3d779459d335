package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goodtune/awtally/internal/config"
	"github.com/goodtune/awtally/internal/storage"
	"github.com/redis/go-redis/v9"
)

// Store implements the storage.Store interface using Redis
type Store struct {
	client     *redis.Client
	eventStore *eventStore
}

// Open creates a new Redis-backed storage instance
func Open(cfg config.RedisConfig) (*Store, error) {
	dialTimeout, err := time.ParseDuration(cfg.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid dial_timeout: %w", err)
	}

	readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid read_timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid write_timeout: %w", err)
	}

	// Host may already carry the port (e.g. miniredis addresses)
	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: failed to connect to Redis: %v", storage.ErrUnavailable, err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "awtally"
	}

	return &Store{
		client:     client,
		eventStore: &eventStore{client: client, keys: keyspace{prefix: prefix}},
	}, nil
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Events returns the EventStore implementation
func (s *Store) Events() storage.EventStore {
	return s.eventStore
}

// keyspace names every key the store touches.
type keyspace struct {
	prefix string
}

func (k keyspace) schema() string { return k.prefix + ":schema" }

// index is a sorted set of natural keys scored by Unix microseconds.
func (k keyspace) index() string { return k.prefix + ":events" }

func (k keyspace) event(naturalKey string) string { return k.prefix + ":event:" + naturalKey }
