package nlq

import (
	"strings"
	"time"

	"github.com/sells-group/fundraising-cli/internal/soql"
)

// Segment is one of the fixed donor categories the classifier can select.
type Segment string

const (
	SegmentLapsed    Segment = "lapsed_donors"
	SegmentMajor     Segment = "major_donors_over"
	SegmentRecent    Segment = "recent_donors"
	SegmentFirstTime Segment = "first_time_donors"
)

// QueryParams describes the parameters a classification resolved to.
// Amount is set only for the major-donor segment; Months only for the
// lapsed and recent segments. Defaulted marks that no rule matched and
// the fallback segment was substituted, so callers can temper confidence.
type QueryParams struct {
	Segment   Segment
	Limit     int
	Amount    float64
	Months    int
	Defaulted bool
}

// Classification rules, evaluated top to bottom. The first match decides
// the segment; later rules are never consulted.
//
//  1. "lapsed"                      -> lapsed donors (months from timeframe, default 12)
//  2. "major" / "over" / "$"        -> major donors over amount (default 1000)
//  3. "recent" AND "month"          -> recent donors (months from timeframe, default 6)
//  4. "first" / "first-time"        -> first-time donors
//  5. no match                      -> recent donors, 6 months, defaulted
//
// Classify renders the segment query against the given reference instant.
// It never fails on malformed text: a wrong guess costs a wrong report,
// not a crash.
func Classify(criteria string, limit int, now time.Time) (string, QueryParams) {
	if limit <= 0 {
		limit = soql.DefaultLimit
	}
	text := strings.ToLower(strings.TrimSpace(criteria))

	if strings.Contains(text, "lapsed") {
		months := 12
		if tf, ok := ParseTimeframe(text, now); ok {
			months = tf.ApproxMonths()
		}
		params := QueryParams{Segment: SegmentLapsed, Limit: limit, Months: months}
		return soql.LapsedDonors(months, limit), params
	}

	if strings.Contains(text, "major") || strings.Contains(text, "over") || strings.Contains(text, "$") {
		amount, ok := ParseAmount(text)
		if !ok {
			amount = 1000.0
		}
		params := QueryParams{Segment: SegmentMajor, Limit: limit, Amount: amount}
		return soql.MajorDonorsOver(amount, limit), params
	}

	if strings.Contains(text, "recent") && strings.Contains(text, "month") {
		months := 6
		if tf, ok := ParseTimeframe(text, now); ok {
			months = tf.ApproxMonths()
		}
		params := QueryParams{Segment: SegmentRecent, Limit: limit, Months: months}
		return soql.RecentDonors(months, limit), params
	}

	if strings.Contains(text, "first") || strings.Contains(text, "first-time") {
		params := QueryParams{Segment: SegmentFirstTime, Limit: limit}
		return soql.FirstTimeDonors(limit), params
	}

	params := QueryParams{Segment: SegmentRecent, Limit: limit, Months: 6, Defaulted: true}
	return soql.RecentDonors(6, limit), params
}
