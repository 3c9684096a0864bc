package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the audit log uses, abstracted so
// tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresLog implements Log using pgxpool.
type PostgresLog struct {
	pool Pool
}

// NewPostgres creates a PostgresLog with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresLog, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresLog{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS query_log (
	id          TEXT PRIMARY KEY,
	tool        TEXT NOT NULL,
	soql        TEXT NOT NULL,
	segment     TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	cache_hit   BOOLEAN NOT NULL DEFAULT false,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at);
CREATE INDEX IF NOT EXISTS idx_query_log_tool ON query_log(tool);
`

// Migrate creates the audit schema if it does not exist.
func (l *PostgresLog) Migrate(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Record inserts one audit entry. A zero ID or CreatedAt is filled in.
func (l *PostgresLog) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx,
		`INSERT INTO query_log (id, tool, soql, segment, row_count, cache_hit, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Tool, e.SOQL, e.Segment, e.RowCount, e.CacheHit, e.DurationMS, e.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "postgres: record query")
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (l *PostgresLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx,
		`SELECT id, tool, soql, segment, row_count, cache_hit, duration_ms, created_at
		 FROM query_log ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list recent")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Tool, &e.SOQL, &e.Segment, &e.RowCount, &e.CacheHit, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate entries")
	}
	return entries, nil
}

// Close releases the connection pool.
func (l *PostgresLog) Close() error {
	l.pool.Close()
	return nil
}
