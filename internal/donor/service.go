// Package donor implements the fundraising analytics tools: free-text donor
// segment queries, open question answering, donor profiles, prospect
// ranking, and validated Salesforce write wrappers. Every tool returns a
// text report; failures are rendered into the report rather than propagated,
// so nothing in this package is fatal to the process.
package donor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/fundraising-cli/internal/cache"
	"github.com/sells-group/fundraising-cli/internal/insight"
	"github.com/sells-group/fundraising-cli/internal/nlq"
	"github.com/sells-group/fundraising-cli/internal/report"
	"github.com/sells-group/fundraising-cli/internal/soql"
	"github.com/sells-group/fundraising-cli/internal/store"
	"github.com/sells-group/fundraising-cli/pkg/salesforce"
)

// Service holds the shared collaborators behind every tool. The Salesforce
// session and the result cache are the only shared state; each tool call is
// otherwise an independent computation.
type Service struct {
	sf           salesforce.Client
	cache        *cache.Cache[*salesforce.QueryResult]
	insights     *insight.Generator
	audit        store.Log
	defaultLimit int
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache overrides the result cache TTL and capacity.
func WithCache(ttl time.Duration, capacity int) Option {
	return func(s *Service) { s.cache = cache.New[*salesforce.QueryResult](ttl, capacity) }
}

// WithInsights attaches an optional insight enrichment generator.
func WithInsights(g *insight.Generator) Option {
	return func(s *Service) { s.insights = g }
}

// WithAudit attaches an optional query audit log.
func WithAudit(l store.Log) Option {
	return func(s *Service) { s.audit = l }
}

// WithDefaultLimit overrides the default row limit.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = n
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service around a Salesforce client.
func New(sf salesforce.Client, opts ...Option) *Service {
	s := &Service{
		sf:           sf,
		cache:        cache.New[*salesforce.QueryResult](cache.DefaultTTL, cache.DefaultCapacity),
		defaultLimit: soql.DefaultLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) limitOr(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return limit
}

// cachedQuery runs soqlText through the result cache, fetching from
// Salesforce on a miss. Fetch failures are never cached. The hit flag comes
// from the cache itself, so callers coalesced onto a cold fetch are not
// audited as cache hits.
func (s *Service) cachedQuery(ctx context.Context, soqlText string) (*salesforce.QueryResult, bool, error) {
	return s.cache.GetOrFetch(soqlText, func() (*salesforce.QueryResult, error) {
		return s.sf.Query(ctx, soqlText)
	})
}

// record writes a best-effort audit entry; audit failures only warn.
func (s *Service) record(ctx context.Context, e store.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, e); err != nil {
		zap.L().Warn("audit record failed", zap.String("tool", e.Tool), zap.Error(err))
	}
}

// QueryDonors classifies free-text criteria into a donor segment, executes
// the rendered SOQL through the cache, and formats a report.
func (s *Service) QueryDonors(ctx context.Context, criteria string, limit int) string {
	limit = s.limitOr(limit)
	started := s.now()
	soqlText, params := nlq.Classify(criteria, limit, s.now().UTC())

	result, hit, err := s.cachedQuery(ctx, soqlText)
	if err != nil {
		return renderFailure("query donors", soqlText, err)
	}

	records := result.Records
	if len(records) > limit {
		records = records[:limit]
	}

	insights, steps := insight.ForSegment(params)
	insights = s.insights.Enrich(ctx, insights, params.Segment, len(records))

	s.record(ctx, store.Entry{
		Tool:       "query_donors",
		SOQL:       soqlText,
		Segment:    string(params.Segment),
		RowCount:   len(records),
		CacheHit:   hit,
		DurationMS: s.now().Sub(started).Milliseconds(),
	})
	return report.Records("Donor Results", records, insights, steps)
}

// RunQuery executes a caller-supplied SOQL query. COUNT() queries render a
// count block; anything else renders a record summary plus raw-record JSON.
func (s *Service) RunQuery(ctx context.Context, query string, limit int) string {
	limit = s.limitOr(limit)
	q := strings.TrimSpace(query)
	if q == "" {
		return report.Header("Validation Error") + "\n- query is required"
	}
	started := s.now()

	result, err := s.sf.Query(ctx, q)
	if err != nil {
		return renderFailure("run SOQL", q, err)
	}

	s.record(ctx, store.Entry{
		Tool:       "run_query",
		SOQL:       q,
		RowCount:   len(result.Records),
		DurationMS: s.now().Sub(started).Milliseconds(),
	})

	if len(result.Records) == 0 && strings.HasPrefix(strings.ToLower(q), "select count") {
		return report.Header("SOQL Count Result") +
			fmt.Sprintf("\n- Count: %d\n- Query: `%s`", result.TotalSize, q)
	}

	records := result.Records
	if len(records) > limit {
		records = records[:limit]
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		raw = []byte("[]")
	}
	return report.Header("SOQL Result") +
		fmt.Sprintf("\n- Records returned: %d of %d\n- Query: `%s`\n\n%s",
			len(records), result.TotalSize, q, raw)
}

// Ask routes an open-ended question to SOQL and renders the answer together
// with the router's explanation of what the query computed.
func (s *Service) Ask(ctx context.Context, question string, limit int) string {
	limit = s.limitOr(limit)
	started := s.now()
	soqlText, why := nlq.RouteQuestion(question, limit)

	result, err := s.sf.Query(ctx, soqlText)
	if err != nil {
		return renderFailure("answer question", soqlText, err)
	}

	s.record(ctx, store.Entry{
		Tool:       "ask",
		SOQL:       soqlText,
		RowCount:   len(result.Records),
		DurationMS: s.now().Sub(started).Milliseconds(),
	})

	if len(result.Records) == 0 && strings.HasPrefix(strings.ToLower(soqlText), "select count") {
		return report.Header("Answer") +
			fmt.Sprintf("\n- %s\n- Count: %d\n- SOQL: `%s`", why, result.TotalSize, soqlText)
	}

	records := result.Records
	if len(records) > limit {
		records = records[:limit]
	}
	lines := []string{
		report.Header("Answer"),
		"- " + why,
		fmt.Sprintf("- Returned: %d of %d", len(records), result.TotalSize),
		fmt.Sprintf("- SOQL: `%s`", soqlText),
		"",
		report.Header("Top Rows"),
	}
	if len(records) == 0 {
		lines = append(lines, "- No records matched.")
	}
	for _, r := range records {
		lines = append(lines, topRowLine(r))
	}
	return strings.Join(lines, "\n")
}

// topRowLine renders one compact result row for Ask: name, then amount and
// date when present.
func topRowLine(r map[string]any) string {
	name := firstString(r, "Name", "ContactId", "Id")
	if name == "" {
		if contact, ok := r["Contact"].(map[string]any); ok {
			name = firstString(contact, "Name")
		}
	}
	if name == "" {
		name = "Unknown"
	}
	parts := []string{"- " + name}
	if amt, ok := report.NumberField(r, "Amount", "total", "expr0"); ok {
		parts = append(parts, "| "+report.Currency(amt))
	}
	if d, ok := r["CloseDate"].(string); ok && d != "" {
		parts = append(parts, "| "+d)
	}
	return strings.Join(parts, " ")
}

func firstString(r map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// contactIDPattern matches Salesforce Contact/User record ID prefixes.
var contactIDPattern = regexp.MustCompile(`^(003|005)[A-Za-z0-9]{12,18}$`)

// DonorProfile fetches one contact by record ID or name match and renders a
// profile with recent gifts, lifetime giving, and annotations.
func (s *Service) DonorProfile(ctx context.Context, identifier string) string {
	if strings.TrimSpace(identifier) == "" {
		return report.Header("Validation Error") + "\n- identifier is required"
	}

	var where string
	if contactIDPattern.MatchString(identifier) {
		where = fmt.Sprintf("Id = '%s'", identifier)
	} else {
		where = "Name LIKE '%" + soql.Escape(identifier) + "%'"
	}
	q := fmt.Sprintf(
		"SELECT Id, Name, Email, Phone, MailingCity, MailingState, "+
			"(SELECT Amount, CloseDate, StageName FROM Opportunities WHERE IsWon=true ORDER BY CloseDate DESC LIMIT 5) RecentGifts, "+
			"(SELECT SUM(Amount) total FROM Opportunities WHERE IsWon=true) LifetimeGiving "+
			"FROM Contact WHERE %s LIMIT 1", where)

	result, err := s.sf.Query(ctx, q)
	if err != nil {
		return renderFailure("fetch donor profile", q, err)
	}
	if len(result.Records) == 0 {
		return report.Header("Not Found") + fmt.Sprintf("\n- No contact matched '%s'", identifier)
	}

	s.record(ctx, store.Entry{Tool: "get_donor_profile", SOQL: q, RowCount: 1})

	c := result.Records[0]
	lines := []string{report.Header("Donor Profile: " + firstString(c, "Name"))}
	lines = append(lines, "- Email: "+firstString(c, "Email"))
	lines = append(lines, "- Phone: "+firstString(c, "Phone"))
	city := firstString(c, "MailingCity")
	state := firstString(c, "MailingState")
	if city != "" || state != "" {
		lines = append(lines, strings.Trim("- Location: "+city+", "+state, ", "))
	}
	lifetime, _ := report.NumberField(c, "LifetimeGiving")
	lines = append(lines, "- Lifetime Giving: "+report.Currency(lifetime))

	lines = append(lines, "", report.Header("Recent Gifts"))
	gifts := subqueryRecords(c["RecentGifts"])
	if len(gifts) == 0 {
		lines = append(lines, "- None on record")
	}
	for _, g := range gifts {
		amt, _ := report.NumberField(g, "Amount")
		lines = append(lines, fmt.Sprintf("- %s | %s | %s",
			firstString(g, "CloseDate"), report.Currency(amt), firstString(g, "StageName")))
	}

	insights, steps := insight.ForProfile()
	lines = append(lines, "", report.Header("AI Insights"))
	for _, i := range insights {
		lines = append(lines, "- "+i)
	}
	lines = append(lines, "", report.Header("Next Steps"))
	for _, st := range steps {
		lines = append(lines, "- "+st)
	}
	return strings.Join(lines, "\n")
}

// subqueryRecords unwraps the REST shape of a correlated subquery field:
// an object holding a records list.
func subqueryRecords(v any) []map[string]any {
	var raw []any
	switch inner := v.(type) {
	case map[string]any:
		raw, _ = inner["records"].([]any)
	case []any:
		raw = inner
	}
	records := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

// FindProspects ranks lapsed donors by lifetime giving as upgrade
// candidates. The score is lifetime giving in thousands.
func (s *Service) FindProspects(ctx context.Context) string {
	q := soql.LapsedDonors(12, s.defaultLimit)
	result, err := s.sf.Query(ctx, q)
	if err != nil {
		return renderFailure("find prospects", q, err)
	}

	scored := make([]map[string]any, len(result.Records))
	copy(scored, result.Records)
	score := func(r map[string]any) float64 {
		lifetime, _ := report.NumberField(r, "LifetimeGiving", "total")
		return lifetime / 1000.0
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return score(scored[i]) > score(scored[j])
	})
	if len(scored) > s.defaultLimit {
		scored = scored[:s.defaultLimit]
	}

	s.record(ctx, store.Entry{Tool: "find_prospects", SOQL: q, RowCount: len(scored)})

	insights, steps := insight.ForProspects()
	return report.Records("Prospect Candidates", scored, insights, steps)
}

// renderFailure maps a typed remote failure to the report block callers see.
func renderFailure(action, query string, err error) string {
	var rateErr *salesforce.RateLimitError
	if errors.As(err, &rateErr) {
		return report.Header("Salesforce Rate Limit") +
			"\n- You've hit the API limit. Try again later or reduce query size."
	}

	var malformedErr *salesforce.MalformedQueryError
	if errors.As(err, &malformedErr) {
		return report.Header("SOQL Error") +
			fmt.Sprintf("\n- Query: `%s`\n- Message: %v\n- Suggestion: Check field names and ensure NPSP is installed.",
				malformedErr.Query, malformedErr.Err)
	}

	var authErr *salesforce.AuthError
	if errors.As(err, &authErr) {
		return report.Header("Salesforce Error") +
			fmt.Sprintf("\n- Unable to connect to Salesforce. %v", authErr.Err)
	}

	msg := report.Header("Salesforce Error") + fmt.Sprintf("\n- Unable to %s. %v", action, err)
	if query != "" {
		msg += fmt.Sprintf("\n- Query: `%s`", query)
	}
	return msg
}
