// Package store persists an audit log of executed tool invocations and the
// SOQL each one rendered. Two drivers are provided: Postgres (pgx) and
// SQLite (modernc). Auditing is optional; a nil Log disables it.
package store

import (
	"context"
	"time"
)

// Entry is one audited tool invocation.
type Entry struct {
	ID         string    `json:"id"`
	Tool       string    `json:"tool"`
	SOQL       string    `json:"soql"`
	Segment    string    `json:"segment,omitempty"`
	RowCount   int       `json:"row_count"`
	CacheHit   bool      `json:"cache_hit"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Log defines the audit persistence interface.
type Log interface {
	Migrate(ctx context.Context) error
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
