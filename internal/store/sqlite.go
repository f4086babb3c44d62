package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createInvocationsTable = `
CREATE TABLE IF NOT EXISTS invocations (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id    TEXT NOT NULL,
	model         TEXT NOT NULL,
	family        TEXT NOT NULL,
	status_code   INTEGER NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	latency_ms    INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);
`

// SQLiteStore persists invocation records in a SQLite database.
// modernc.org/sqlite is a pure-Go driver, so no cgo toolchain is needed.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store at '%s': %w", path, err)
	}

	if _, err := db.Exec(createInvocationsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// RecordInvocation appends one record.
func (s *SQLiteStore) RecordInvocation(rec *InvocationRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO invocations
			(request_id, model, family, status_code, input_tokens, output_tokens, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Model, rec.Family, rec.StatusCode,
		rec.InputTokens, rec.OutputTokens, rec.Latency.Milliseconds(),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// RecentInvocations returns up to limit records, newest first.
func (s *SQLiteStore) RecentInvocations(limit int) ([]*InvocationRecord, error) {
	if limit <= 0 {
		limit = DefaultMemoryCapacity
	}

	rows, err := s.db.Query(
		`SELECT request_id, model, family, status_code, input_tokens, output_tokens, latency_ms, created_at
		 FROM invocations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var records []*InvocationRecord
	for rows.Next() {
		var rec InvocationRecord
		var latencyMs int64
		var createdAt string
		if err := rows.Scan(&rec.RequestID, &rec.Model, &rec.Family, &rec.StatusCode,
			&rec.InputTokens, &rec.OutputTokens, &latencyMs, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan invocation row: %w", err)
		}
		rec.Latency = time.Duration(latencyMs) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
