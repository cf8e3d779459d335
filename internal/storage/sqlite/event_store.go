package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goodtune/awtally/internal/storage"
)

type eventStore struct {
	db *sql.DB
}

func (s *eventStore) EnsureSchema(ctx context.Context) error {
	if err := runMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *eventStore) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM events)").Scan(&exists); err != nil {
		return false, fmt.Errorf("check events: %w", err)
	}
	return !exists, nil
}

func (s *eventStore) InsertAll(ctx context.Context, events []storage.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO events (timestamp, duration, app, title, platform)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, e := range events {
		res, err := stmt.ExecContext(ctx, storage.FormatTimestamp(e.Timestamp), e.Duration, e.App, e.Title, e.Platform)
		if err != nil {
			return 0, fmt.Errorf("insert event %s/%s: %w", storage.FormatTimestamp(e.Timestamp), e.App, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

func (s *eventStore) Query(ctx context.Context, q storage.Query) ([]storage.GroupRow, error) {
	rows := make([]storage.GroupRow, 0)
	if q.Apps != nil && len(q.Apps) == 0 {
		return rows, nil
	}

	query, args := buildQuery(q)
	result, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = result.Close() }()

	for result.Next() {
		var row storage.GroupRow
		if err := result.Scan(&row.Date, &row.Key, &row.Value); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, result.Err()
}

// buildQuery renders q as a grouped SELECT over the events table.
func buildQuery(q storage.Query) (string, []any) {
	var (
		where []string
		args  []any
	)

	if len(q.Apps) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Apps)), ",")
		where = append(where, fmt.Sprintf("app IN (%s)", placeholders))
		for _, app := range q.Apps {
			args = append(args, app)
		}
	}
	if q.Range.Start != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, storage.FormatTimestamp(*q.Range.Start))
	}
	if q.Range.End != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, storage.FormatTimestamp(*q.Range.End))
	}

	dateExpr, keyExpr := "''", "app"
	groupBy := "app"
	switch q.GroupBy {
	case storage.GroupByDateApp:
		dateExpr = "substr(timestamp, 1, 10)"
		groupBy = "grp_date, app"
	case storage.GroupByDatePlatform:
		dateExpr, keyExpr = "substr(timestamp, 1, 10)", "platform"
		groupBy = "grp_date, platform"
	}

	aggExpr := "SUM(duration)"
	if q.Aggregate == storage.AggregateCount {
		aggExpr = "COUNT(*)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s AS grp_date, %s AS grp_key, %s AS agg_value FROM events", dateExpr, keyExpr, aggExpr)
	if len(where) > 0 {
		fmt.Fprintf(&b, " WHERE %s", strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " GROUP BY %s", groupBy)
	if q.Having != nil {
		fmt.Fprintf(&b, " HAVING %s >= ?", aggExpr)
		args = append(args, *q.Having)
	}

	switch q.Order {
	case storage.OrderDateAsc:
		b.WriteString(" ORDER BY grp_date ASC, grp_key ASC")
	case storage.OrderValueAsc:
		b.WriteString(" ORDER BY agg_value ASC, grp_date ASC, grp_key ASC")
	default:
		b.WriteString(" ORDER BY agg_value DESC, grp_date ASC, grp_key ASC")
	}

	return b.String(), args
}

func (s *eventStore) ReadAll(ctx context.Context) ([]storage.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, duration, app, title, platform
		FROM events
		ORDER BY timestamp ASC, app ASC, title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]storage.Event, 0)
	for rows.Next() {
		var (
			e         storage.Event
			timestamp string
		)
		if err := rows.Scan(&timestamp, &e.Duration, &e.App, &e.Title, &e.Platform); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if e.Timestamp, err = storage.ParseTimestamp(timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *eventStore) Metadata(ctx context.Context) (storage.Metadata, error) {
	var (
		meta       storage.Metadata
		start, end sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT MIN(timestamp), MAX(timestamp), COUNT(timestamp)
		FROM events
	`).Scan(&start, &end, &meta.TotalRecords)
	if err != nil {
		return storage.Metadata{}, fmt.Errorf("query metadata: %w", err)
	}

	if start.Valid {
		ts, err := storage.ParseTimestamp(start.String)
		if err != nil {
			return storage.Metadata{}, err
		}
		meta.StartDate = &ts
	}
	if end.Valid {
		ts, err := storage.ParseTimestamp(end.String)
		if err != nil {
			return storage.Metadata{}, err
		}
		meta.EndDate = &ts
	}
	return meta, nil
}
