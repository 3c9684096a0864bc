package nlq

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sells-group/fundraising-cli/internal/soql"
)

var (
	countThisMonthPattern = regexp.MustCompile(`how\s+many\s+(donation|gift)s?.*this\s+month`)
	topDonorsPattern      = regexp.MustCompile(`top\s+(\d+)\s+donor`)
	lastMonthsPattern     = regexp.MustCompile(`last\s*(\d+)\s*months?`)
)

// RouteQuestion maps an open-ended fundraising question to a SOQL query and
// a fixed explanation of what the query answers. The explanation is part of
// the contract: callers surface it alongside the results.
//
// Precedence, first match wins:
//
//  1. "how many donations/gifts ... this month"     -> count query
//  2. "top N donor(s) ... quarter" (N defaults 10)  -> grouped top-N by sum
//  3. "last year ... hasn't/haven't/not given since" -> gave last year, not this year
//  4. "donor"/"gift" + "last N months"              -> recency query
//  5. anything else                                 -> 6-month recency fallback
func RouteQuestion(question string, defaultLimit int) (string, string) {
	if defaultLimit <= 0 {
		defaultLimit = soql.DefaultLimit
	}
	q := strings.ToLower(strings.TrimSpace(question))

	if countThisMonthPattern.MatchString(q) {
		return "SELECT COUNT() FROM Opportunity WHERE IsWon = true AND CloseDate = THIS_MONTH",
			"Count of won opportunities in the current month"
	}

	topN := 10
	if m := topDonorsPattern.FindStringSubmatch(q); m != nil {
		topN, _ = strconv.Atoi(m[1])
	}
	if strings.Contains(q, "top") && strings.Contains(q, "donor") && strings.Contains(q, "quarter") {
		query := fmt.Sprintf(
			"SELECT ContactId, SUM(Opportunity.Amount) total "+
				"FROM OpportunityContactRole "+
				"WHERE Opportunity.IsWon = true AND Opportunity.CloseDate = THIS_QUARTER "+
				"GROUP BY ContactId ORDER BY SUM(Opportunity.Amount) DESC "+
				"LIMIT %d", topN)
		return query, "Top donors this quarter by total won amount"
	}

	lastYear := strings.Contains(q, "last year") || strings.Contains(q, "this time last year")
	notSince := strings.Contains(q, "hasn't given since") ||
		strings.Contains(q, "haven't given since") ||
		strings.Contains(q, "not since")
	if lastYear && notSince {
		query := fmt.Sprintf(
			"SELECT Id, Name, Email FROM Contact WHERE Id IN ("+
				"SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true AND Opportunity.CloseDate = LAST_YEAR) "+
				"AND Id NOT IN (SELECT ContactId FROM OpportunityContactRole WHERE Opportunity.IsWon=true AND Opportunity.CloseDate = THIS_YEAR) "+
				"LIMIT %d", defaultLimit)
		return query, "Contacts who gave last year but not yet this year"
	}

	if m := lastMonthsPattern.FindStringSubmatch(q); m != nil &&
		(strings.Contains(q, "donor") || strings.Contains(q, "gift")) {
		months, _ := strconv.Atoi(m[1])
		if months < 1 {
			months = 1
		}
		return soql.RecentDonors(months, defaultLimit),
			fmt.Sprintf("Contacts with gifts in the last %d months", months)
	}

	return soql.RecentDonors(6, defaultLimit),
		"Fallback: recent donors in the last 6 months"
}
