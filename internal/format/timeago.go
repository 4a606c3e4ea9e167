package format

import (
	"strconv"
	"time"
)

// timeUnit is one step of the time-ago ladder.
type timeUnit struct {
	name  string
	count int64
}

// TimeAgo describes how long before now t happened, in the largest whole
// unit that fits: "3 days ago", "1 year ago". Months are 30 days and years
// are 12 months. Times at or after now read "just now".
func TimeAgo(t, now time.Time) string {
	diff := now.Sub(t).Milliseconds()

	seconds := diff / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	weeks := days / 7
	months := days / 30
	years := months / 12

	for _, u := range []timeUnit{
		{"year", years},
		{"month", months},
		{"week", weeks},
		{"day", days},
		{"hour", hours},
		{"minute", minutes},
		{"second", seconds},
	} {
		if u.count > 0 {
			return pluralize(u.count, u.name) + " ago"
		}
	}
	return "just now"
}

// TimeAgoSince is TimeAgo measured against the current time.
func TimeAgoSince(t time.Time) string {
	return TimeAgo(t, time.Now())
}

func pluralize(n int64, unit string) string {
	s := strconv.FormatInt(n, 10) + " " + unit
	if n > 1 {
		s += "s"
	}
	return s
}
