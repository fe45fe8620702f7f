package util

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order by ParseDate. Month-first is the last resort
// because "01-02-2006" is ambiguous with day-first exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"01-02-2006",
}

// ParseDate tries the calendar layouts used by price exports, then unix seconds.
// Returns (t, true) if any worked. Results are in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
