package nlq

import (
	"regexp"
	"strconv"
	"time"
)

// Timeframe is a relative time interval ending at the reference instant.
// Start is never after End.
type Timeframe struct {
	Start time.Time
	End   time.Time
}

var (
	monthsPattern    = regexp.MustCompile(`(?i)(last|past)\s*(\d+)\s*months?`)
	yearsPattern     = regexp.MustCompile(`(?i)(last|past)\s*(\d+)\s*years?`)
	sixMonthsPattern = regexp.MustCompile(`(?i)(last|past)\s*6\s*months`)
	oneYearPattern   = regexp.MustCompile(`(?i)(last|past)\s*1\s*year`)
)

// ParseTimeframe extracts a relative time window from text against the given
// reference instant. Rules are checked in order: "last/past N months",
// "last/past N years", then the literal 6-month and 1-year phrasings.
// Returns false when nothing matches.
func ParseTimeframe(text string, now time.Time) (Timeframe, bool) {
	if m := monthsPattern.FindStringSubmatch(text); m != nil {
		months, _ := strconv.Atoi(m[2])
		return Timeframe{Start: addMonths(now, -months), End: now}, true
	}
	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		years, _ := strconv.Atoi(m[2])
		return Timeframe{Start: addMonths(now, -years*12), End: now}, true
	}
	if sixMonthsPattern.MatchString(text) {
		return Timeframe{Start: addMonths(now, -6), End: now}, true
	}
	if oneYearPattern.MatchString(text) {
		return Timeframe{Start: addMonths(now, -12), End: now}, true
	}
	return Timeframe{}, false
}

// ApproxMonths converts a Timeframe back into an integer month count using a
// 30-day month. This round-trip is lossy: 6 calendar months is roughly 182
// days, which re-derives as 6 via integer division by 30, but edge lengths
// can drift by one month. Never returns less than 1.
func (tf Timeframe) ApproxMonths() int {
	days := int(tf.End.Sub(tf.Start).Hours() / 24)
	months := days / 30
	if months < 1 {
		return 1
	}
	return months
}

// addMonths shifts t by a number of calendar months, clamping to the last
// valid day of the target month (one month before March 31 is February 28
// or 29, not March 2).
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
