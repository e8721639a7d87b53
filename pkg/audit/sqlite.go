package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteSchema creates the audit table. The full record is stored as
// canonical-JSON-compatible text; the indexed columns exist for the offline
// verifier, not for the core, which never reads them.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_records (
    seq INTEGER PRIMARY KEY,
    prev_hash TEXT NOT NULL,
    record_hash TEXT NOT NULL,
    correlation_id TEXT NOT NULL,
    provenance_id TEXT NOT NULL,
    decision TEXT NOT NULL,
    policy_set_version TEXT NOT NULL,
    logged_at TIMESTAMP NOT NULL,
    record TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_correlation ON audit_records(correlation_id);
CREATE INDEX IF NOT EXISTS idx_audit_provenance ON audit_records(provenance_id);
`

// SQLiteConfig contains configuration for the SQLite sink.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite sink configuration.
func DefaultSQLiteConfig(path string) *SQLiteConfig {
	return &SQLiteConfig{
		Path:        path,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteSink persists audit records to SQLite in WAL mode. It implements
// both Sink and Archive.
type SQLiteSink struct {
	db     *sql.DB
	insert *sql.Stmt
	logger *slog.Logger
}

// NewSQLiteSink opens the database, enables WAL mode, and prepares the
// schema.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewSinkError("sqlite", "open", err)
	}
	// The sink is a single writer; one connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, NewSinkError("sqlite", "open", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", config.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, NewSinkError("sqlite", "open", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, NewSinkError("sqlite", "open", err)
	}

	insert, err := db.Prepare(`
		INSERT INTO audit_records
		(seq, prev_hash, record_hash, correlation_id, provenance_id, decision, policy_set_version, logged_at, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, NewSinkError("sqlite", "open", err)
	}

	logger := slog.Default().With("component", "audit.sink.sqlite")
	logger.Info("SQLite audit sink initialized", "path", config.Path)

	return &SQLiteSink{db: db, insert: insert, logger: logger}, nil
}

// Append inserts one record. The primary key on seq makes duplicate appends
// impossible at the storage layer as well.
func (s *SQLiteSink) Append(ctx context.Context, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return NewSinkError("sqlite", "append", err)
	}

	_, err = s.insert.ExecContext(ctx,
		record.Seq,
		record.PrevHash,
		record.RecordHash,
		record.CorrelationID,
		record.ProvenanceID,
		string(record.Decision.Value),
		record.PolicySetVersion,
		record.Timestamps.LoggedAt,
		string(data),
	)
	if err != nil {
		return NewSinkError("sqlite", "append", err)
	}
	return nil
}

// LoadAll reads every record back in sequence order.
func (s *SQLiteSink) LoadAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT record FROM audit_records ORDER BY seq ASC")
	if err != nil {
		return nil, NewSinkError("sqlite", "load", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, NewSinkError("sqlite", "load", err)
		}
		var record Record
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			return nil, NewSinkError("sqlite", "load", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewSinkError("sqlite", "load", err)
	}
	return records, nil
}

// Close releases the prepared statement and the database.
func (s *SQLiteSink) Close() error {
	if s.insert != nil {
		s.insert.Close()
	}
	return s.db.Close()
}
