package donor

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Tool is one entry in the explicit tool table: a name, a human-readable
// description, and the handler that decodes its own arguments. The table is
// built once at startup; there is no hidden registry.
type Tool struct {
	Name        string
	Description string
	Handler     func(ctx context.Context, args json.RawMessage) (string, error)
}

func decodeArgs[T any](args json.RawMessage) (T, error) {
	var v T
	if len(args) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(args, &v); err != nil {
		return v, eris.Wrap(err, "decode tool arguments")
	}
	return v, nil
}

// Tools returns the tool table for this service. Handler errors occur only
// for undecodable arguments; tool-level failures are rendered into the
// returned report text.
func (s *Service) Tools() []Tool {
	return []Tool{
		{
			Name:        "query_donors",
			Description: "Query donor segments from free-text criteria (lapsed, major, recent, first-time)",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					Criteria string `json:"criteria"`
					Limit    int    `json:"limit"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.QueryDonors(ctx, a.Criteria, a.Limit), nil
			},
		},
		{
			Name:        "run_query",
			Description: "Run a raw SOQL query",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					Query string `json:"query"`
					Limit int    `json:"limit"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.RunQuery(ctx, a.Query, a.Limit), nil
			},
		},
		{
			Name:        "ask",
			Description: "Answer an open-ended fundraising question",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					Question string `json:"question"`
					Limit    int    `json:"limit"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.Ask(ctx, a.Question, a.Limit), nil
			},
		},
		{
			Name:        "get_donor_profile",
			Description: "Fetch a donor profile by contact ID or name",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					Identifier string `json:"identifier"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.DonorProfile(ctx, a.Identifier), nil
			},
		},
		{
			Name:        "find_prospects",
			Description: "Rank lapsed donors as upgrade prospects by lifetime giving",
			Handler: func(ctx context.Context, _ json.RawMessage) (string, error) {
				return s.FindProspects(ctx), nil
			},
		},
		{
			Name:        "create_record",
			Description: "Create any sObject record",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					SObject string         `json:"sobject"`
					Fields  map[string]any `json:"fields"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.CreateRecord(ctx, a.SObject, a.Fields), nil
			},
		},
		{
			Name:        "update_record",
			Description: "Update any sObject record by ID",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					SObject  string         `json:"sobject"`
					RecordID string         `json:"record_id"`
					Fields   map[string]any `json:"fields"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.UpdateRecord(ctx, a.SObject, a.RecordID, a.Fields), nil
			},
		},
		{
			Name:        "create_task",
			Description: "Create a Task (requires Subject and WhoId)",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[map[string]any](args)
				if err != nil {
					return "", err
				}
				return s.CreateTask(ctx, a), nil
			},
		},
		{
			Name:        "create_contact",
			Description: "Create a Contact (requires LastName)",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[map[string]any](args)
				if err != nil {
					return "", err
				}
				return s.CreateContact(ctx, a), nil
			},
		},
		{
			Name:        "create_opportunity",
			Description: "Create an Opportunity (requires Name, StageName, CloseDate, Amount)",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[map[string]any](args)
				if err != nil {
					return "", err
				}
				return s.CreateOpportunity(ctx, a), nil
			},
		},
		{
			Name:        "log_interaction",
			Description: "Log a donor interaction as a Task",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					ContactID string         `json:"contact_id"`
					Details   map[string]any `json:"details"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.LogInteraction(ctx, a.ContactID, a.Details), nil
			},
		},
		{
			Name:        "update_contact_stage",
			Description: "Update a contact's lifecycle stage",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					ContactID string `json:"contact_id"`
					Stage     string `json:"stage"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.UpdateContactStage(ctx, a.ContactID, a.Stage), nil
			},
		},
		{
			Name:        "bulk_update_records",
			Description: "Apply record updates sequentially with a per-item summary",
			Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
				a, err := decodeArgs[struct {
					Records []BulkRecord `json:"records"`
				}](args)
				if err != nil {
					return "", err
				}
				return s.BulkUpdate(ctx, a.Records), nil
			},
		},
	}
}
