// Package report renders query results into deterministic text reports.
// Formatting the same inputs twice always produces byte-identical output.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency formats an amount as $ with thousands grouping and two decimals.
// Nil-ish (zero) amounts render as $0.00.
func Currency(amount float64) string {
	return printer.Sprintf("$%.2f", amount)
}

// Date formats a timestamp as an ISO date. The zero time renders empty.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Header renders a title with a dashed underline at least six dashes wide.
func Header(title string) string {
	width := len(title)
	if width < 6 {
		width = 6
	}
	return title + "\n" + strings.Repeat("-", width)
}

// Records renders a titled report: one block per record with Name, optional
// Email, Lifetime Giving, and Last Gift, followed by AI Insights and Next
// Steps bullet lists when non-empty.
func Records(title string, records []map[string]any, insights, nextSteps []string) string {
	lines := []string{Header(title)}

	for _, r := range records {
		name := recordName(r)
		lines = append(lines, "- Name: "+name)
		if email, ok := r["Email"].(string); ok && email != "" {
			lines = append(lines, "  - Email: "+email)
		}
		if total, ok := NumberField(r, "LifetimeGiving", "total"); ok && total != 0 {
			lines = append(lines, "  - Lifetime Giving: "+Currency(total))
		}
		if last := stringField(r, "LastGiftDate", "lastGiftDate"); last != "" {
			lines = append(lines, "  - Last Gift: "+last)
		}
	}

	lines = appendBullets(lines, "AI Insights", insights)
	lines = appendBullets(lines, "Next Steps", nextSteps)
	return strings.Join(lines, "\n")
}

func appendBullets(lines []string, title string, items []string) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, "", Header(title))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return lines
}

func recordName(r map[string]any) string {
	if name, ok := r["Name"].(string); ok && name != "" {
		return name
	}
	if contact, ok := r["Contact"].(map[string]any); ok {
		if name, ok := contact["Name"].(string); ok && name != "" {
			return name
		}
	}
	return "Unknown"
}

// Unwrap tolerates the CRM's nested-aggregate shape: a correlated subquery
// returns a sub-list wrapping the single aggregate value, so a list is
// replaced by its first element before interpretation.
func Unwrap(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		v = list[0]
	}
	if m, ok := v.(map[string]any); ok {
		for _, key := range []string{"total", "lastGiftDate", "expr0"} {
			if inner, ok := m[key]; ok {
				return inner
			}
		}
	}
	return v
}

// NumberField extracts the first present key from a record as a float,
// unwrapping nested aggregates.
func NumberField(r map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := r[key]; ok && v != nil {
			return ToFloat(Unwrap(v))
		}
	}
	return 0, false
}

func stringField(r map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		switch val := Unwrap(v).(type) {
		case string:
			return val
		case time.Time:
			return Date(val)
		case nil:
		default:
			return fmt.Sprintf("%v", val)
		}
	}
	return ""
}

// ToFloat converts the loosely typed values a decoded Salesforce record can
// hold into a float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
