package donor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sells-group/fundraising-cli/internal/report"
)

// missingFields returns the required keys absent or empty in fields. Empty
// strings and zero numbers count as missing, so a zero-amount opportunity is
// rejected before any remote call.
func missingFields(fields map[string]any, required ...string) []string {
	var missing []string
	for _, key := range required {
		if emptyValue(fields[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

func emptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case float64:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case bool:
		return !val
	}
	return false
}

func fieldsJSON(fields map[string]any) string {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// CreateRecord is the generic creator for any sObject.
func (s *Service) CreateRecord(ctx context.Context, sObjectName string, fields map[string]any) string {
	if sObjectName == "" || len(fields) == 0 {
		return report.Header("Validation Error") + "\n- Provide sobject (string) and fields (non-empty object)."
	}
	id, err := s.sf.Create(ctx, sObjectName, fields)
	if err != nil {
		return renderFailure("create "+sObjectName, "", err)
	}
	return report.Header("Record Created") +
		fmt.Sprintf("\n- sObject: %s\n- Id: %s\n- Fields: %s", sObjectName, id, fieldsJSON(fields))
}

// UpdateRecord is the generic updater for any sObject by Id.
func (s *Service) UpdateRecord(ctx context.Context, sObjectName, recordID string, fields map[string]any) string {
	if sObjectName == "" || recordID == "" || len(fields) == 0 {
		return report.Header("Validation Error") + "\n- Provide sobject, record_id, and fields (non-empty object)."
	}
	if err := s.sf.Update(ctx, sObjectName, recordID, fields); err != nil {
		return renderFailure(fmt.Sprintf("update %s %s", sObjectName, recordID), "", err)
	}
	return report.Header("Record Updated") +
		fmt.Sprintf("\n- sObject: %s\n- Id: %s\n- Fields: %s", sObjectName, recordID, fieldsJSON(fields))
}

// CreateTask creates a Task; Subject and WhoId are required.
func (s *Service) CreateTask(ctx context.Context, fields map[string]any) string {
	if missing := missingFields(fields, "Subject", "WhoId"); len(missing) > 0 {
		return report.Header("Validation Error") + "\n- Missing fields: " + strings.Join(missing, ", ")
	}
	id, err := s.sf.Create(ctx, "Task", fields)
	if err != nil {
		return renderFailure("create task", "", err)
	}
	return report.Header("Task Created") +
		fmt.Sprintf("\n- Id: %s\n- Subject: %v\n- WhoId: %v", id, fields["Subject"], fields["WhoId"])
}

// CreateContact creates a Contact; LastName is required.
func (s *Service) CreateContact(ctx context.Context, fields map[string]any) string {
	if missing := missingFields(fields, "LastName"); len(missing) > 0 {
		return report.Header("Validation Error") + "\n- LastName is required"
	}
	id, err := s.sf.Create(ctx, "Contact", fields)
	if err != nil {
		return renderFailure("create contact", "", err)
	}
	first, _ := fields["FirstName"].(string)
	last, _ := fields["LastName"].(string)
	name := strings.TrimSpace(first + " " + last)
	return report.Header("Contact Created") + fmt.Sprintf("\n- Id: %s\n- Name: %s", id, name)
}

// CreateOpportunity creates an Opportunity; Name, StageName, CloseDate, and
// Amount are required.
func (s *Service) CreateOpportunity(ctx context.Context, fields map[string]any) string {
	if missing := missingFields(fields, "Name", "StageName", "CloseDate", "Amount"); len(missing) > 0 {
		return report.Header("Validation Error") + "\n- Missing fields: " + strings.Join(missing, ", ")
	}
	id, err := s.sf.Create(ctx, "Opportunity", fields)
	if err != nil {
		return renderFailure("create opportunity", "", err)
	}
	amount, _ := report.ToFloat(fields["Amount"])
	return report.Header("Opportunity Created") +
		fmt.Sprintf("\n- Id: %s\n- Name: %v\n- Amount: %s", id, fields["Name"], report.Currency(amount))
}

// LogInteraction records a donor touch as a Task against the contact.
func (s *Service) LogInteraction(ctx context.Context, contactID string, details map[string]any) string {
	if contactID == "" {
		return report.Header("Validation Error") + "\n- contact_id is required"
	}
	subject, _ := details["Subject"].(string)
	if subject == "" {
		subject = "Donor Outreach"
	}
	fields := map[string]any{"Subject": subject, "WhoId": contactID}
	if desc, ok := details["Description"].(string); ok && desc != "" {
		fields["Description"] = desc
	}
	return s.CreateTask(ctx, fields)
}

// UpdateContactStage sets the NPSP lifecycle stage custom field.
func (s *Service) UpdateContactStage(ctx context.Context, contactID, stage string) string {
	if contactID == "" || stage == "" {
		return report.Header("Validation Error") + "\n- contact_id and stage are required"
	}
	if err := s.sf.Update(ctx, "Contact", contactID, map[string]any{"LifecycleStage__c": stage}); err != nil {
		return renderFailure("update contact", "", err)
	}
	return report.Header("Contact Updated") + fmt.Sprintf("\n- Id: %s\n- Stage: %s", contactID, stage)
}

// BulkRecord is one item in a bulk update request.
type BulkRecord struct {
	SObject string         `json:"sobject"`
	ID      string         `json:"id"`
	Fields  map[string]any `json:"fields"`
}

// BulkUpdate applies updates sequentially, continuing past individual
// failures, and returns a per-item summary. Not transactional.
func (s *Service) BulkUpdate(ctx context.Context, records []BulkRecord) string {
	if len(records) == 0 {
		return report.Header("Validation Error") + "\n- records_data is empty"
	}

	updated := 0
	var failures []string
	for _, r := range records {
		if r.SObject == "" || r.ID == "" || len(r.Fields) == 0 {
			failures = append(failures, fmt.Sprintf("missing data for record %s:%s", r.SObject, r.ID))
			continue
		}
		if err := s.sf.Update(ctx, r.SObject, r.ID, r.Fields); err != nil {
			failures = append(failures, fmt.Sprintf("%s:%s -> %v", r.SObject, r.ID, err))
			continue
		}
		updated++
	}

	lines := []string{report.Header("Bulk Update Summary"), fmt.Sprintf("- Updated: %d", updated)}
	if len(failures) > 0 {
		lines = append(lines, "- Errors:")
		for _, f := range failures {
			lines = append(lines, "  - "+f)
		}
	}
	return strings.Join(lines, "\n")
}
