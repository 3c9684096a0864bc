package salesforce

import (
	"fmt"
	"strings"
)

// AuthError indicates session establishment failed. It is propagated as-is
// and never retried automatically.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "salesforce auth: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error { return e.Err }

// MalformedQueryError indicates Salesforce rejected the rendered SOQL.
// Query carries the offending text so callers can surface it with a
// remediation hint.
type MalformedQueryError struct {
	Query string
	Err   error
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("salesforce malformed query %q: %v", e.Query, e.Err)
}

func (e *MalformedQueryError) Unwrap() error { return e.Err }

// RateLimitError indicates the org's API request limit was hit. Callers
// surface a distinct try-again-later message rather than a generic failure.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return "salesforce rate limit: " + e.Err.Error()
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// RemoteError wraps any other remote failure with the operation attempted
// and, where applicable, the query text.
type RemoteError struct {
	Op    string
	Query string
	Err   error
}

func (e *RemoteError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("salesforce %s (%s): %v", e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("salesforce %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// malformedPatterns are substrings Salesforce includes in responses to
// syntactically or semantically invalid SOQL.
var malformedPatterns = []string{
	"MALFORMED_QUERY",
	"INVALID_FIELD",
	"INVALID_TYPE",
	"INVALID_QUERY_FILTER_OPERATOR",
}

// classifyRemote translates a raw remote failure into the typed error
// taxonomy. Rate-limit detection matches the known REQUEST_LIMIT substring
// in the remote error text.
func classifyRemote(op, query string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "REQUEST_LIMIT") {
		return &RateLimitError{Err: err}
	}
	for _, p := range malformedPatterns {
		if strings.Contains(msg, p) {
			return &MalformedQueryError{Query: query, Err: err}
		}
	}
	return &RemoteError{Op: op, Query: query, Err: err}
}
