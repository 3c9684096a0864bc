package soql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLapsedDonors(t *testing.T) {
	q := LapsedDonors(12, 25)
	assert.Contains(t, q, "FROM Contact")
	assert.Contains(t, q, "Opportunity.IsWon=true")
	assert.Contains(t, q, "NOT IN")
	assert.Contains(t, q, "LAST_N_DAYS:360")
	assert.Contains(t, q, "LifetimeGiving")
	assert.Contains(t, q, "LastGiftDate")
	assert.True(t, strings.HasSuffix(q, "LIMIT 25"))
}

func TestMajorDonorsOver(t *testing.T) {
	q := MajorDonorsOver(5000, 10)
	assert.Contains(t, q, "HAVING SUM(Opportunity.Amount) > 5000")
	assert.Contains(t, q, "GROUP BY ContactId")
	assert.True(t, strings.HasSuffix(q, "LIMIT 10"))
}

func TestRecentDonors(t *testing.T) {
	q := RecentDonors(6, 25)
	assert.Contains(t, q, "LAST_N_DAYS:180")
	assert.Contains(t, q, "lastGiftDate")
	assert.True(t, strings.HasSuffix(q, "LIMIT 25"))

	// Zero months still produces a valid one-day window.
	q = RecentDonors(0, 25)
	assert.Contains(t, q, "LAST_N_DAYS:1")
}

func TestFirstTimeDonors(t *testing.T) {
	q := FirstTimeDonors(25)
	assert.Contains(t, q, "HAVING COUNT(Opportunity.Id) = 1")
	assert.True(t, strings.HasSuffix(q, "LIMIT 25"))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `O\'Brien`, Escape("O'Brien"))
	assert.Equal(t, "plain", Escape("plain"))
}
