package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goodtune/awtally/internal/storage"
	"github.com/redis/go-redis/v9"
)

var insertEvent = redis.NewScript(insertEventScript)

type eventStore struct {
	client *redis.Client
	keys   keyspace
}

// EnsureSchema records the keyspace version. Redis needs no table setup.
func (s *eventStore) EnsureSchema(ctx context.Context) error {
	if err := s.client.SetNX(ctx, s.keys.schema(), "1", 0).Err(); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *eventStore) IsEmpty(ctx context.Context) (bool, error) {
	n, err := s.client.ZCard(ctx, s.keys.index()).Result()
	if err != nil {
		return false, fmt.Errorf("count events: %w", err)
	}
	return n == 0, nil
}

// InsertAll runs the insert script for every event in one pipeline. Each
// script call is atomic, so a failed batch can simply be retried.
func (s *eventStore) InsertAll(ctx context.Context, events []storage.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	cmds := make([]*redis.Cmd, 0, len(events))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range events {
			member := storage.NaturalKey(e)
			keys := []string{s.keys.event(member), s.keys.index()}
			args := []interface{}{
				storage.FormatTimestamp(e.Timestamp),
				strconv.FormatFloat(e.Duration, 'g', -1, 64),
				e.App,
				e.Title,
				e.Platform,
				e.Timestamp.UnixMicro(),
				member,
			}
			cmds = append(cmds, insertEvent.Eval(ctx, pipe, keys, args...))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("insert events: %w", err)
	}

	inserted := 0
	for _, cmd := range cmds {
		n, err := cmd.Int()
		if err != nil {
			return 0, fmt.Errorf("insert event result: %w", err)
		}
		inserted += n
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

	total, err := s.client.ZCard(ctx, s.keys.index()).Result()
	if err != nil {
		return meta, fmt.Errorf("count events: %w", err)
	}
	if total == 0 {
		return meta, nil
	}

	first, err := s.client.ZRange(ctx, s.keys.index(), 0, 0).Result()
	if err != nil {
		return meta, fmt.Errorf("first event: %w", err)
	}
	last, err := s.client.ZRange(ctx, s.keys.index(), -1, -1).Result()
	if err != nil {
		return meta, fmt.Errorf("last event: %w", err)
	}
	if len(first) == 0 || len(last) == 0 {
		return meta, nil
	}

	start, err := memberTimestamp(first[0])
	if err != nil {
		return meta, err
	}
	end, err := memberTimestamp(last[0])
	if err != nil {
		return meta, err
	}

	meta.StartDate = &start
	meta.EndDate = &end
	meta.TotalRecords = int(total)
	return meta, nil
}

// scan loads every event whose index score falls inside r.
func (s *eventStore) scan(ctx context.Context, r storage.TimeRange) ([]storage.Event, error) {
	bounds := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if r.Start != nil {
		bounds.Min = strconv.FormatInt(r.Start.UnixMicro(), 10)
	}
	if r.End != nil {
		bounds.Max = strconv.FormatInt(r.End.UnixMicro(), 10)
	}

	members, err := s.client.ZRangeByScore(ctx, s.keys.index(), bounds).Result()
	if err != nil {
		return nil, fmt.Errorf("scan event index: %w", err)
	}

	events := make([]storage.Event, 0, len(members))
	if len(members) == 0 {
		return events, nil
	}

	cmds := make([]*redis.MapStringStringCmd, 0, len(members))
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, member := range members {
			cmds = append(cmds, pipe.HGetAll(ctx, s.keys.event(member)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			return nil, fmt.Errorf("load event: %w", err)
		}
		e, err := parseEvent(data)
		if err != nil {
			return nil, err
		}
		if !r.Contains(e.Timestamp) {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// parseEvent converts a Redis hash to an Event
func parseEvent(data map[string]string) (storage.Event, error) {
	if len(data) == 0 {
		return storage.Event{}, errors.New("event hash missing for indexed key")
	}

	ts, err := storage.ParseTimestamp(data["timestamp"])
	if err != nil {
		return storage.Event{}, err
	}

	duration, err := strconv.ParseFloat(data["duration"], 64)
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to parse duration: %w", err)
	}

	return storage.Event{
		Timestamp: ts,
		Duration:  duration,
		App:       data["app"],
		Title:     data["title"],
		Platform:  data["platform"],
	}, nil
}

// memberTimestamp recovers the timestamp prefix of an index member.
func memberTimestamp(member string) (time.Time, error) {
	raw, _, _ := strings.Cut(member, "\x1f")
	return storage.ParseTimestamp(raw)
}
