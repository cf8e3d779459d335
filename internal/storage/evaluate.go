package storage

import (
	"sort"
)

// Evaluate runs q against an in-memory event set. Backends without a query
// language use it so every backend shares the same semantics.
func Evaluate(events []Event, q Query) []GroupRow {
	rows := make([]GroupRow, 0)
	if q.Apps != nil && len(q.Apps) == 0 {
		return rows
	}

	var allowed map[string]struct{}
	if q.Apps != nil {
		allowed = make(map[string]struct{}, len(q.Apps))
		for _, app := range q.Apps {
			allowed[app] = struct{}{}
		}
	}

	type groupKey struct{ date, key string }
	index := make(map[groupKey]int)

	for _, e := range events {
		if !q.Range.Contains(e.Timestamp) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[e.App]; !ok {
				continue
			}
		}

		var k groupKey
		switch q.GroupBy {
		case GroupByDateApp:
			k = groupKey{date: DateOf(e.Timestamp), key: e.App}
		case GroupByDatePlatform:
			k = groupKey{date: DateOf(e.Timestamp), key: e.Platform}
		default:
			k = groupKey{key: e.App}
		}

		value := e.Duration
		if q.Aggregate == AggregateCount {
			value = 1
		}

		if i, ok := index[k]; ok {
			rows[i].Value += value
			continue
		}
		index[k] = len(rows)
		rows = append(rows, GroupRow{Date: k.date, Key: k.key, Value: value})
	}

	if q.Having != nil {
		kept := rows[:0]
		for _, row := range rows {
			if row.Value >= *q.Having {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	SortRows(rows, q.Order)
	return rows
}

// SortRows orders rows the way a SQL backend does for the given Order,
// breaking ties by date and then key.
func SortRows(rows []GroupRow, order Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch order {
		case OrderDateAsc:
			if a.Date != b.Date {
				return a.Date < b.Date
			}
		case OrderValueAsc:
			if a.Value != b.Value {
				return a.Value < b.Value
			}
		default:
			if a.Value != b.Value {
				return a.Value > b.Value
			}
		}
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Key < b.Key
	})
}

// Summarize computes dataset metadata from an event set.
func Summarize(events []Event) Metadata {
	var meta Metadata
	for i := range events {
		ts := events[i].Timestamp
		if meta.StartDate == nil || ts.Before(*meta.StartDate) {
			start := ts
			meta.StartDate = &start
		}
		if meta.EndDate == nil || ts.After(*meta.EndDate) {
			end := ts
			meta.EndDate = &end
		}
	}
	meta.TotalRecords = len(events)
	return meta
}
