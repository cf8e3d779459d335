package storage

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the fixed-width UTC form events are persisted in.
// Lexical order of formatted timestamps matches chronological order, and
// nanoseconds are kept so distinct instants never share a natural key.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// timestampLayouts are the ISO-8601 shapes accepted from exporters. Layouts
// without a zone are read as UTC. Fractional seconds are optional in all.
var timestampLayouts = []struct {
	layout string
	naive  bool
}{
	{layout: time.RFC3339Nano},
	{layout: "2006-01-02T15:04:05-0700"},
	{layout: "2006-01-02 15:04:05Z07:00"},
	{layout: "2006-01-02 15:04:05-0700"},
	{layout: "2006-01-02T15:04:05", naive: true},
	{layout: "2006-01-02 15:04:05", naive: true},
}

// DateLayout is the calendar-day form used for daily grouping.
const DateLayout = "2006-01-02"

// Platform labels assigned during ingestion.
const (
	PlatformWindows = "Windows"
	PlatformLinux   = "Linux"
	PlatformMacOS   = "macOS"
	PlatformUnknown = "Unknown"
)

// Event represents one observed window-focus interval.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"` // seconds
	App       string    `json:"app"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
}

// NaturalKey returns the dedup key of an event: (timestamp, app, title).
// The key starts with the formatted timestamp and a \x1f separator; the app
// is length-prefixed so no app or title content can make two keys collide.
func NaturalKey(e Event) string {
	return FormatTimestamp(e.Timestamp) + "\x1f" + strconv.Itoa(len(e.App)) + ":" + e.App + "\x1f" + e.Title
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp as written by exporters or
// by FormatTimestamp.
func ParseTimestamp(value string) (time.Time, error) {
	for _, l := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if l.naive {
			t, err = time.ParseInLocation(l.layout, value, time.UTC)
		} else {
			t, err = time.Parse(l.layout, value)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not an ISO-8601 timestamp", value)
}

// DateOf returns the UTC calendar day of t.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// TimeRange bounds a query by timestamp. Both ends are inclusive and optional.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// GroupBy selects the grouping dimensions of a query.
type GroupBy int

const (
	GroupByApp GroupBy = iota
	GroupByDateApp
	GroupByDatePlatform
)

// Aggregate selects the aggregate function applied per group.
type Aggregate int

const (
	AggregateSum Aggregate = iota // SUM(duration)
	AggregateCount
)

// Order selects result ordering.
type Order int

const (
	OrderValueDesc Order = iota
	OrderValueAsc
	OrderDateAsc
)

// Query describes a grouped aggregate over stored events.
type Query struct {
	Range TimeRange
	// Apps restricts the query to the given raw identifiers. Nil means no
	// restriction; a non-nil empty slice matches nothing.
	Apps      []string
	GroupBy   GroupBy
	Aggregate Aggregate
	// Having keeps only groups whose aggregate is >= the value.
	Having *float64
	Order  Order
}

// GroupRow is one aggregated group. Date is empty for GroupByApp.
// Key holds the app or the platform depending on GroupBy.
type GroupRow struct {
	Date  string  `json:"date,omitempty"`
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Metadata summarizes the stored dataset.
type Metadata struct {
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	TotalRecords int        `json:"total_records"`
}
