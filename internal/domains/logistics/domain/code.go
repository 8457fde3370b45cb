package domain

import (
	"fmt"
	"time"
)

// RouteCode formats the human readable code for the seq-th route created on day.
func RouteCode(day time.Time, seq int) string {
	return fmt.Sprintf("RT-%s-%03d", day.Format("20060102"), seq)
}

// DayBounds returns the half-open calendar day [start, end) containing t, in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
