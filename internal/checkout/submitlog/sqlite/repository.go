// Package sqlite stores the submission log in a local SQLite file (WAL mode,
// pure-Go driver).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/genzzone/storefront/internal/checkout/submitlog"

	_ "modernc.org/sqlite"
)

// ErrNotFound is submitlog.ErrNotFound, re-exported for callers of this package.
var ErrNotFound = submitlog.ErrNotFound

const schema = `
CREATE TABLE IF NOT EXISTS submission_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    submission_id   TEXT    NOT NULL,
    status          TEXT    NOT NULL,
    step            TEXT    NOT NULL DEFAULT '',
    order_id        INTEGER NOT NULL DEFAULT 0,
    idempotency_key TEXT    NOT NULL DEFAULT '',
    -- order-create body, only on SUBMITTING rows
    payload         TEXT,
    error_messages  TEXT    NOT NULL DEFAULT '[]',
    trace_id        TEXT    NOT NULL DEFAULT '',
    span_id         TEXT    NOT NULL DEFAULT '',
    updated_at      TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_logs_submission_id ON submission_logs(submission_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_submission_logs_order_id ON submission_logs(order_id);
CREATE INDEX IF NOT EXISTS idx_submission_logs_trace_id ON submission_logs(trace_id);
`

// fixed width so that TEXT ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	_ submitlog.Repository = (*Repository)(nil)
	_ submitlog.Reader     = (*Repository)(nil)
)

// Repository is the SQLite submission log. It implements submitlog.Repository
// and submitlog.Reader.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Save appends an entry. Safe for concurrent use.
func (r *Repository) Save(ctx context.Context, entry *submitlog.Entry) error {
	const q = `
		INSERT INTO submission_logs
			(submission_id, status, step, order_id, idempotency_key, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SubmissionID,
		string(entry.Status),
		entry.Step,
		entry.OrderID,
		entry.IdempotencyKey,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save submission log for %q: %w", entry.SubmissionID, err)
	}
	return nil
}

const selectColumns = `
	SELECT submission_id, status, step, order_id, idempotency_key, COALESCE(payload,''), error_messages,
	       trace_id, span_id, updated_at
	FROM   submission_logs`

// GetLatest returns the current state of a submission.
func (r *Repository) GetLatest(ctx context.Context, submissionID string) (*submitlog.Entry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+`
		WHERE  submission_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`, submissionID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", submissionID, err)
	}
	return entry, nil
}

// List returns every transition of a submission, oldest first.
func (r *Repository) List(ctx context.Context, submissionID string) ([]*submitlog.Entry, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+`
		WHERE  submission_id = ?
		ORDER  BY updated_at ASC, id ASC`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list %q: %w", submissionID, err)
	}
	defer rows.Close()

	var out []*submitlog.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list %q: %w", submissionID, err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// FindByOrder returns the submission that produced orderID.
func (r *Repository) FindByOrder(ctx context.Context, orderID int64) (*submitlog.Entry, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+`
		WHERE  order_id = ?
		ORDER  BY id DESC
		LIMIT  1`, orderID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %d: %w", orderID, err)
	}
	return entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*submitlog.Entry, error) {
	var entry submitlog.Entry
	var updatedAt string
	err := s.Scan(
		&entry.SubmissionID,
		&entry.Status,
		&entry.Step,
		&entry.OrderID,
		&entry.IdempotencyKey,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: parse updated_at %q: %w", updatedAt, err)
	}
	return &entry, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString stores NULL for an empty payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
