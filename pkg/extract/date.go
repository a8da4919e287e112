package extract

import (
	"strings"
	"time"

	"github.com/securo-skn/crimefeed/internal/utils"
)

// dateLayouts are tried in order. Day-first wins over month-first for
// ambiguous numeric dates.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"2/1/2006",
	"1/2/2006",
	time.RFC3339,
}

// Fallback window for dates that can't be read.
const (
	FallbackMinHours = 1
	FallbackMaxHours = 72
)

// ParseDate reads a listing date. Empty or unreadable text yields a plausible
// recent time, now minus 1-72 hours, instead of failing.
func ParseDate(text string, now time.Time, rng *utils.Rand) time.Time {
	t, ok := parseLayouts(text, now.Location())
	if ok {
		return t
	}
	return rng.HoursAgo(now, FallbackMinHours, FallbackMaxHours)
}

func parseLayouts(text string, loc *time.Location) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
