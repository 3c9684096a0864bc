package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteLog implements Log using modernc.org/sqlite.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteLog{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS query_log (
	id          TEXT PRIMARY KEY,
	tool        TEXT NOT NULL,
	soql        TEXT NOT NULL,
	segment     TEXT NOT NULL DEFAULT '',
	row_count   INTEGER NOT NULL DEFAULT 0,
	cache_hit   INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_query_log_created_at ON query_log(created_at);
CREATE INDEX IF NOT EXISTS idx_query_log_tool ON query_log(tool);
`

// Migrate creates the audit schema if it does not exist.
func (l *SQLiteLog) Migrate(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// Record inserts one audit entry. A zero ID or CreatedAt is filled in.
func (l *SQLiteLog) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO query_log (id, tool, soql, segment, row_count, cache_hit, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Tool, e.SOQL, e.Segment, e.RowCount, e.CacheHit, e.DurationMS, e.CreatedAt)
	if err != nil {
		return eris.Wrap(err, "sqlite: record query")
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (l *SQLiteLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, tool, soql, segment, row_count, cache_hit, duration_ms, created_at
		 FROM query_log ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list recent")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Tool, &e.SOQL, &e.Segment, &e.RowCount, &e.CacheHit, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate entries")
	}
	return entries, nil
}

// Close closes the database handle.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
