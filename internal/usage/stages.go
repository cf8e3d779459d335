package usage

import (
	"math"
	"sort"
	"time"

	"github.com/goodtune/awtally/internal/storage"
)

// series is a per-day (or overall, with an empty Date) duration total.
type series struct {
	Date    string
	Key     string // display title or platform
	App     string // representative raw identifier
	Seconds float64
}

// resolveTitles replaces each row's app with its display title.
func resolveTitles(rows []storage.GroupRow, title func(app string) string) []series {
	out := make([]series, 0, len(rows))
	for _, row := range rows {
		out = append(out, series{
			Date:    row.Date,
			Key:     title(row.Key),
			App:     row.Key,
			Seconds: row.Value,
		})
	}
	return out
}

// mergeByTitle sums rows sharing a title. The first app seen for a title is
// kept as its representative, so input ordered by duration keeps the
// largest contributor.
func mergeByTitle(rows []series) []series {
	index := make(map[string]int, len(rows))
	out := make([]series, 0, len(rows))
	for _, row := range rows {
		if i, ok := index[row.Key]; ok {
			out[i].Seconds += row.Seconds
			continue
		}
		index[row.Key] = len(out)
		out = append(out, series{Key: row.Key, App: row.App, Seconds: row.Seconds})
	}
	return out
}

// mergeByDateTitle sums rows sharing a (date, title) pair.
func mergeByDateTitle(rows []series) []series {
	type dateKey struct{ date, key string }
	index := make(map[dateKey]int, len(rows))
	out := make([]series, 0, len(rows))
	for _, row := range rows {
		k := dateKey{row.Date, row.Key}
		if i, ok := index[k]; ok {
			out[i].Seconds += row.Seconds
			continue
		}
		index[k] = len(out)
		out = append(out, series{Date: row.Date, Key: row.Key, Seconds: row.Seconds})
	}
	return out
}

// sortByDuration orders rows by descending duration, keeping input order
// for equal durations.
func sortByDuration(rows []SpentTimeRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].DurationHours > rows[j].DurationHours
	})
}

// fillDailyGaps inserts zero rows so each key covers every day between its
// first and last date. Output is ordered by key, then date.
func fillDailyGaps(rows []series) []series {
	byKey := make(map[string]map[string]float64)
	bounds := make(map[string][2]string)
	for _, row := range rows {
		days, ok := byKey[row.Key]
		if !ok {
			days = make(map[string]float64)
			byKey[row.Key] = days
			bounds[row.Key] = [2]string{row.Date, row.Date}
		}
		days[row.Date] += row.Seconds

		b := bounds[row.Key]
		if row.Date < b[0] {
			b[0] = row.Date
		}
		if row.Date > b[1] {
			b[1] = row.Date
		}
		bounds[row.Key] = b
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]series, 0, len(rows))
	for _, key := range keys {
		b := bounds[key]
		first, err1 := time.Parse(storage.DateLayout, b[0])
		last, err2 := time.Parse(storage.DateLayout, b[1])
		if err1 != nil || err2 != nil {
			// Not a calendar date; emit what was observed
			dates := make([]string, 0, len(byKey[key]))
			for date := range byKey[key] {
				dates = append(dates, date)
			}
			sort.Strings(dates)
			for _, date := range dates {
				out = append(out, series{Date: date, Key: key, Seconds: byKey[key][date]})
			}
			continue
		}
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			date := day.Format(storage.DateLayout)
			out = append(out, series{Date: date, Key: key, Seconds: byKey[key][date]})
		}
	}
	return out
}

// toHours converts seconds to hours rounded to two decimals.
func toHours(seconds float64) float64 {
	return math.Round(seconds/3600*100) / 100
}
