package usage

import (
	"time"
)

// UnknownTitle labels usage whose app has no title.
const UnknownTitle = "Unknown"

// SpentTimeRow is the total time spent on one display title
type SpentTimeRow struct {
	Title         string  `json:"title"`
	App           string  `json:"app"` // representative raw identifier
	DurationHours float64 `json:"duration_hours"`
}

// DailyUsageRow is the time spent on one title during one day
type DailyUsageRow struct {
	Date          string  `json:"date"`
	Title         string  `json:"title"`
	DurationHours float64 `json:"duration_hours"`
}

// DailyPlatformRow is the time spent on one platform during one day
type DailyPlatformRow struct {
	Date          string  `json:"date"`
	Platform      string  `json:"platform"`
	DurationHours float64 `json:"duration_hours"`
}

// SpentTimeOptions filters a spent-time query. Nil fields use defaults.
type SpentTimeOptions struct {
	Start    *time.Time
	End      *time.Time
	MinHours *float64
}
