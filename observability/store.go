// Package observability persists activation records to SQLite and answers
// the status queries the HTTP API and MCP tools serve.
//
// The store is strictly an audit surface: the activator never reads it back
// during an activation, and a failing store never blocks a copy.
package observability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipwire/clipwire/activation"
	"github.com/clipwire/clipwire/dbopen"
	"github.com/clipwire/clipwire/idgen"
)

// Schema contains the DDL for the activation log. Applied by NewStore; kept
// exported so hosts embedding clipwire can fold it into their own schema
// management.
const Schema = `
CREATE TABLE IF NOT EXISTS copy_activations (
    row_id     TEXT PRIMARY KEY,
    id         TEXT NOT NULL,
    page_url   TEXT NOT NULL,
    page_id    TEXT NOT NULL,
    bind_id    TEXT NOT NULL,
    selector   TEXT NOT NULL DEFAULT '',
    outcome    TEXT NOT NULL,
    error_kind TEXT NOT NULL DEFAULT '',
    error      TEXT NOT NULL DEFAULT '',
    chars      INTEGER NOT NULL DEFAULT 0,
    seq        INTEGER NOT NULL,
    timestamp  INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_activations_time
    ON copy_activations(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_activations_page
    ON copy_activations(page_id, timestamp DESC);
`

// Store writes and queries the activation log.
type Store struct {
	db    *sql.DB
	newID idgen.Generator
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithRowIDGenerator sets a custom ID generator for row IDs.
func WithRowIDGenerator(gen idgen.Generator) StoreOption {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates a Store on an open database and applies the schema.
func NewStore(db *sql.DB, opts ...StoreOption) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("observability: db is required")
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("observability: apply schema: %w", err)
	}
	s := &Store{
		db:    db,
		newID: idgen.Prefixed("act_", idgen.Default),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Log records one activation. Non-blocking: errors are logged via slog but
// do not propagate, so a failing activation store never blocks a copy.
func (s *Store) Log(ctx context.Context, rec activation.Record) {
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO copy_activations (
			row_id, id, page_url, page_id, bind_id, selector,
			outcome, error_kind, error, chars, seq, timestamp
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.newID(), rec.ID, rec.PageURL, rec.PageID, rec.BindID, rec.Selector,
		string(rec.Outcome), string(rec.ErrorKind), rec.Error, rec.Chars,
		rec.Seq, rec.Timestamp)
	if err != nil {
		slog.Error("observability: activation log failed", "error", err, "id", rec.ID)
	}
}

// Recent returns the most recent activations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]activation.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, page_url, page_id, bind_id, selector,
		       outcome, error_kind, error, chars, seq, timestamp
		FROM copy_activations
		ORDER BY timestamp DESC, seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("observability: query recent: %w", err)
	}
	defer rows.Close()

	var out []activation.Record
	for rows.Next() {
		var r activation.Record
		var outcome, kind string
		if err := rows.Scan(&r.ID, &r.PageURL, &r.PageID, &r.BindID, &r.Selector,
			&outcome, &kind, &r.Error, &r.Chars, &r.Seq, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("observability: scan: %w", err)
		}
		r.Outcome = activation.Outcome(outcome)
		r.ErrorKind = activation.ErrorKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Counts holds per-outcome totals.
type Counts struct {
	Success int64 `json:"success"`
	Failed  int64 `json:"failed"`
}

// CountByOutcome returns the per-outcome activation totals.
func (s *Store) CountByOutcome(ctx context.Context) (Counts, error) {
	var c Counts
	rows, err := s.db.QueryContext(ctx,
		`SELECT outcome, COUNT(*) FROM copy_activations GROUP BY outcome`)
	if err != nil {
		return c, fmt.Errorf("observability: count: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return c, fmt.Errorf("observability: scan count: %w", err)
		}
		switch activation.Outcome(outcome) {
		case activation.OutcomeSuccess:
			c.Success = n
		case activation.OutcomeFailed:
			c.Failed = n
		}
	}
	return c, rows.Err()
}

// RetentionConfig specifies activation-log retention in days.
// Zero means no cleanup.
type RetentionConfig struct {
	ActivationDays int
	RunVacuumAfter bool
}

// Cleanup deletes records exceeding the retention threshold.
func Cleanup(ctx context.Context, db *sql.DB, cfg RetentionConfig) error {
	if cfg.ActivationDays <= 0 {
		return nil
	}

	// Whitelisted table/column, in case this is ever refactored to take
	// external input.
	const table, column = "copy_activations", "timestamp"

	cutoff := time.Now().Add(-time.Duration(cfg.ActivationDays) * 24 * time.Hour).UnixMilli()
	q := fmt.Sprintf("DELETE FROM %s WHERE %s < ?", table, column)
	if _, err := dbopen.Exec(ctx, db, q, cutoff); err != nil {
		return fmt.Errorf("observability: cleanup %s: %w", table, err)
	}

	if cfg.RunVacuumAfter {
		if _, err := db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("observability: vacuum: %w", err)
		}
	}
	return nil
}
