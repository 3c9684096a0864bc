package nlq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	now := time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

	t.Run("last 6 months spans roughly six calendar months", func(t *testing.T) {
		tf, ok := ParseTimeframe("donors from the last 6 months", now)
		require.True(t, ok)
		assert.Equal(t, now, tf.End)

		days := tf.End.Sub(tf.Start).Hours() / 24
		assert.GreaterOrEqual(t, days, 170.0)
		assert.LessOrEqual(t, days, 186.0)
	})

	t.Run("past N months", func(t *testing.T) {
		tf, ok := ParseTimeframe("past 3 months", now)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC), tf.Start)
	})

	t.Run("last N years", func(t *testing.T) {
		tf, ok := ParseTimeframe("gave in the last 2 years", now)
		require.True(t, ok)
		assert.Equal(t, time.Date(2023, time.October, 15, 12, 0, 0, 0, time.UTC), tf.Start)
	})

	t.Run("last 1 year literal", func(t *testing.T) {
		tf, ok := ParseTimeframe("last 1 year", now)
		require.True(t, ok)
		assert.Equal(t, now.Year()-1, tf.Start.Year())
	})

	t.Run("no match", func(t *testing.T) {
		_, ok := ParseTimeframe("who are our best donors", now)
		assert.False(t, ok)
	})

	t.Run("start never after end", func(t *testing.T) {
		tf, ok := ParseTimeframe("last 12 months", now)
		require.True(t, ok)
		assert.False(t, tf.Start.After(tf.End))
	})
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	// One month before March 31 is the last day of February, not March 2-3.
	marchEnd := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	got := addMonths(marchEnd, -1)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), got)

	leapYear := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	got = addMonths(leapYear, -1)
	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestApproxMonths(t *testing.T) {
	now := time.Date(2025, time.October, 15, 0, 0, 0, 0, time.UTC)

	t.Run("six calendar months re-derives as six", func(t *testing.T) {
		tf := Timeframe{Start: addMonths(now, -6), End: now}
		assert.Equal(t, 6, tf.ApproxMonths())
	})

	t.Run("never below one", func(t *testing.T) {
		tf := Timeframe{Start: now.Add(-24 * time.Hour), End: now}
		assert.Equal(t, 1, tf.ApproxMonths())
	})
}
