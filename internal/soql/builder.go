// Package soql renders donor-segment query templates in Salesforce SOQL.
// Templates are pure: every parameter is a previously parsed, typed value
// and the row limit is always embedded, so no query is unbounded and no raw
// user text ever reaches the query string.
package soql

import (
	"fmt"
	"strings"
)

// DefaultLimit bounds result sets when the caller does not supply a limit.
const DefaultLimit = 25

// LapsedDonors selects contacts with at least one won gift ever and none
// within the last months*30 days. Each row carries lifetime giving and last
// gift date as correlated aggregates.
func LapsedDonors(months, limit int) string {
	return fmt.Sprintf(
		"SELECT Id, Name, Email, "+
			"(SELECT SUM(Amount) total FROM Opportunities WHERE IsWon=true) LifetimeGiving, "+
			"(SELECT MAX(CloseDate) lastGiftDate FROM Opportunities WHERE IsWon=true) LastGiftDate "+
			"FROM Contact "+
			"WHERE Id IN (SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true) "+
			"AND Id NOT IN (SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true AND Opportunity.CloseDate = LAST_N_DAYS:%d) "+
			"LIMIT %d",
		months*30, limit)
}

// MajorDonorsOver selects contacts whose summed won-gift amount exceeds the
// threshold. The filter is a HAVING clause over the gift-role relationship
// because the threshold applies to the aggregate, not individual gifts.
func MajorDonorsOver(amount float64, limit int) string {
	return fmt.Sprintf(
		"SELECT Id, Name, Email, "+
			"(SELECT SUM(Amount) total FROM Opportunities WHERE IsWon=true) LifetimeGiving "+
			"FROM Contact "+
			"WHERE Id IN (SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true) "+
			"AND Id IN (SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true GROUP BY ContactId HAVING SUM(Opportunity.Amount) > %d) "+
			"LIMIT %d",
		int(amount), limit)
}

// RecentDonors selects contacts with a won gift within the last months*30
// days, carrying the most recent qualifying gift date.
func RecentDonors(months, limit int) string {
	days := months * 30
	if days < 1 {
		days = 1
	}
	return fmt.Sprintf(
		"SELECT Id, Name, Email, "+
			"(SELECT MAX(CloseDate) lastGiftDate FROM Opportunities WHERE IsWon=true AND CloseDate = LAST_N_DAYS:%d) LastGiftDate "+
			"FROM Contact WHERE Id IN (SELECT ContactId FROM OpportunityContactRole WHERE "+
			"Opportunity.IsWon=true AND Opportunity.CloseDate = LAST_N_DAYS:%d) "+
			"LIMIT %d",
		days, days, limit)
}

// FirstTimeDonors selects contacts with exactly one won gift ever.
func FirstTimeDonors(limit int) string {
	return fmt.Sprintf(
		"SELECT Id, Name, Email FROM Contact WHERE "+
			"Id IN (SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true GROUP BY ContactId HAVING COUNT(Opportunity.Id) = 1) "+
			"LIMIT %d",
		limit)
}

// Escape escapes single quotes in SOQL string literals to prevent injection.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
