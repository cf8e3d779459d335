package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(value)
	require.NoError(t, err)
	return ts
}

func TestFormatTimestampNormalizesToUTC(t *testing.T) {
	ts := mustTime(t, "2024-03-01T23:30:00+02:00")
	assert.Equal(t, "2024-03-01T21:30:00.000000000Z", FormatTimestamp(ts))
	assert.Equal(t, "2024-03-01", DateOf(ts))

	late := mustTime(t, "2024-03-01T23:30:00-02:00")
	assert.Equal(t, "2024-03-02", DateOf(late))
}

func TestNaturalKeyIgnoresDurationAndPlatform(t *testing.T) {
	ts := mustTime(t, "2024-03-01T09:00:00Z")
	a := Event{Timestamp: ts, Duration: 1, App: "firefox", Title: "x", Platform: PlatformLinux}
	b := Event{Timestamp: ts, Duration: 2, App: "firefox", Title: "x", Platform: PlatformWindows}
	assert.Equal(t, NaturalKey(a), NaturalKey(b))

	b.Title = "y"
	assert.NotEqual(t, NaturalKey(a), NaturalKey(b))
}

func TestFormatTimestampKeepsNanoseconds(t *testing.T) {
	a := mustTime(t, "2024-03-01T09:00:00.000000100Z")
	b := mustTime(t, "2024-03-01T09:00:00.000000200Z")
	assert.Equal(t, "2024-03-01T09:00:00.000000100Z", FormatTimestamp(a))
	assert.NotEqual(t, NaturalKey(Event{Timestamp: a, App: "x"}), NaturalKey(Event{Timestamp: b, App: "x"}))
}

func TestNaturalKeyFieldsCannotCollide(t *testing.T) {
	ts := mustTime(t, "2024-03-01T09:00:00Z")
	a := Event{Timestamp: ts, App: "a\x1fb", Title: "c"}
	b := Event{Timestamp: ts, App: "a", Title: "b\x1fc"}
	assert.NotEqual(t, NaturalKey(a), NaturalKey(b))
}

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 500000000, time.UTC)

	tests := []struct {
		name  string
		value string
	}{
		{name: "rfc3339", value: "2024-03-01T09:30:00.5Z"},
		{name: "rfc3339 offset", value: "2024-03-01T11:30:00.5+02:00"},
		{name: "basic offset", value: "2024-03-01T09:30:00.5+0000"},
		{name: "space separated", value: "2024-03-01 09:30:00.5+00:00"},
		{name: "space separated basic offset", value: "2024-03-01 10:30:00.5+0100"},
		{name: "naive", value: "2024-03-01T09:30:00.5"},
		{name: "naive space separated", value: "2024-03-01 09:30:00.5"},
		{name: "persisted form", value: "2024-03-01T09:30:00.500000000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, want.Equal(ts), "got %s", ts)
		})
	}

	for _, bad := range []string{"", "yesterday", "2024-03-01", "2024-13-01T00:00:00Z"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestEvaluate(t *testing.T) {
	events := []Event{
		{Timestamp: mustTime(t, "2024-03-01T09:00:00Z"), Duration: 100, App: "a", Platform: PlatformLinux},
		{Timestamp: mustTime(t, "2024-03-01T10:00:00Z"), Duration: 300, App: "b", Platform: PlatformLinux},
		{Timestamp: mustTime(t, "2024-03-02T10:00:00Z"), Duration: 200, App: "a", Platform: PlatformWindows},
	}
	threshold := 300.0

	tests := []struct {
		name  string
		query Query
		want  []GroupRow
	}{
		{
			name:  "sum by app descending",
			query: Query{GroupBy: GroupByApp},
			want:  []GroupRow{{Key: "a", Value: 300}, {Key: "b", Value: 300}},
		},
		{
			name:  "having is inclusive",
			query: Query{GroupBy: GroupByApp, Having: &threshold},
			want:  []GroupRow{{Key: "a", Value: 300}, {Key: "b", Value: 300}},
		},
		{
			name:  "date and app ascending by date",
			query: Query{GroupBy: GroupByDateApp, Apps: []string{"a"}, Order: OrderDateAsc},
			want:  []GroupRow{{Date: "2024-03-01", Key: "a", Value: 100}, {Date: "2024-03-02", Key: "a", Value: 200}},
		},
		{
			name:  "empty app set matches nothing",
			query: Query{GroupBy: GroupByApp, Apps: []string{}},
			want:  []GroupRow{},
		},
		{
			name:  "count by date and platform",
			query: Query{GroupBy: GroupByDatePlatform, Aggregate: AggregateCount, Order: OrderDateAsc},
			want: []GroupRow{
				{Date: "2024-03-01", Key: PlatformLinux, Value: 2},
				{Date: "2024-03-02", Key: PlatformWindows, Value: 1},
			},
		},
		{
			name: "range filter",
			query: func() Query {
				start := mustTime(t, "2024-03-01T10:00:00Z")
				return Query{GroupBy: GroupByApp, Range: TimeRange{Start: &start}, Order: OrderValueAsc}
			}(),
			want: []GroupRow{{Key: "a", Value: 200}, {Key: "b", Value: 300}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(events, tt.query))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Metadata{}, Summarize(nil))

	events := []Event{
		{Timestamp: mustTime(t, "2024-03-02T10:00:00Z")},
		{Timestamp: mustTime(t, "2024-03-01T09:00:00Z")},
		{Timestamp: mustTime(t, "2024-03-05T09:00:00Z")},
	}
	meta := Summarize(events)
	require.NotNil(t, meta.StartDate)
	require.NotNil(t, meta.EndDate)
	assert.True(t, meta.StartDate.Equal(events[1].Timestamp))
	assert.True(t, meta.EndDate.Equal(events[2].Timestamp))
	assert.Equal(t, 3, meta.TotalRecords)
}
