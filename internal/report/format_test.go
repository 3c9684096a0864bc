package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{1000, "$1,000.00"},
		{2500.5, "$2,500.50"},
		{1234567.89, "$1,234,567.89"},
		{99.9, "$99.90"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.amount))
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "2025-03-31", Date(time.Date(2025, 3, 31, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Date(time.Time{}))
}

func TestHeader(t *testing.T) {
	t.Run("underline matches title width", func(t *testing.T) {
		got := Header("Donor Report")
		assert.Equal(t, "Donor Report\n------------", got)
	})

	t.Run("underline never shorter than six dashes", func(t *testing.T) {
		got := Header("Ask")
		assert.Equal(t, "Ask\n------", got)
	})
}

func TestRecords(t *testing.T) {
	records := []map[string]any{
		{
			"Name":           "Ada Lovelace",
			"Email":          "ada@example.org",
			"LifetimeGiving": 12500.0,
			"LastGiftDate":   "2025-09-01",
		},
		{
			"Contact": map[string]any{"Name": "Grace Hopper"},
		},
		{},
	}
	insights := []string{"Strong recurring base"}
	steps := []string{"Schedule outreach call"}

	got := Records("Major Donors", records, insights, steps)

	assert.Contains(t, got, "Major Donors\n------------")
	assert.Contains(t, got, "- Name: Ada Lovelace")
	assert.Contains(t, got, "  - Email: ada@example.org")
	assert.Contains(t, got, "  - Lifetime Giving: $12,500.00")
	assert.Contains(t, got, "  - Last Gift: 2025-09-01")
	assert.Contains(t, got, "- Name: Grace Hopper")
	assert.Contains(t, got, "- Name: Unknown")
	assert.Contains(t, got, "AI Insights\n-----------")
	assert.Contains(t, got, "- Strong recurring base")
	assert.Contains(t, got, "Next Steps\n----------")
	assert.Contains(t, got, "- Schedule outreach call")

	// Same inputs must render byte-identical output.
	assert.Equal(t, got, Records("Major Donors", records, insights, steps))
}

func TestRecordsOmitsEmptySections(t *testing.T) {
	got := Records("Recent Donors", nil, nil, nil)
	assert.Equal(t, "Recent Donors\n-------------", got)
	assert.False(t, strings.Contains(got, "AI Insights"))
	assert.False(t, strings.Contains(got, "Next Steps"))
}

func TestUnwrap(t *testing.T) {
	t.Run("list is replaced by its first element", func(t *testing.T) {
		v := Unwrap([]any{map[string]any{"total": 500.0}})
		assert.Equal(t, 500.0, v)
	})

	t.Run("empty list yields nil", func(t *testing.T) {
		assert.Nil(t, Unwrap([]any{}))
	})

	t.Run("aggregate keys are preferred in order", func(t *testing.T) {
		assert.Equal(t, "2025-01-15", Unwrap(map[string]any{"lastGiftDate": "2025-01-15"}))
		assert.Equal(t, 3.0, Unwrap(map[string]any{"expr0": 3.0}))
	})

	t.Run("scalars pass through", func(t *testing.T) {
		assert.Equal(t, 42.0, Unwrap(42.0))
	})
}

func TestNumberField(t *testing.T) {
	r := map[string]any{
		"LifetimeGiving": []any{map[string]any{"total": json.Number("980.25")}},
	}
	got, ok := NumberField(r, "LifetimeGiving", "total")
	assert.True(t, ok)
	assert.Equal(t, 980.25, got)

	_, ok = NumberField(map[string]any{}, "LifetimeGiving")
	assert.False(t, ok)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"float64", 1.5, 1.5, true},
		{"int", 7, 7, true},
		{"int64", int64(9), 9, true},
		{"json number", json.Number("12.25"), 12.25, true},
		{"numeric string", "300", 300, true},
		{"bad string", "lots", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
