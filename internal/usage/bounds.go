package usage

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodtune/awtally/internal/storage"
)

var boundLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseBound parses a range bound given as an RFC 3339 timestamp, a naive
// timestamp (read as UTC), or a YYYY-MM-DD date. An empty value means no
// bound. A date used as an end bound covers the whole day.
func ParseBound(value string, end bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range boundLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return &t, nil
		}
	}

	day, err := time.ParseInLocation(storage.DateLayout, value, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
	}
	if end {
		day = day.AddDate(0, 0, 1).Add(-time.Microsecond)
	}
	return &day, nil
}
