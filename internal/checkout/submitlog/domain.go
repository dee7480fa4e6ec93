// Package submitlog is the audit trail of order submissions: one row per
// orchestrator state transition, correlated with the trace that produced it.
package submitlog

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("submitlog: submission not found")

// Status names an orchestrator transition.
type Status string

const (
	StatusValidating Status = "VALIDATING"
	StatusSubmitting Status = "SUBMITTING"
	StatusCSRFRetry  Status = "CSRF_RETRY"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

// Entry is a single row of the log.
type Entry struct {
	// SubmissionID identifies one Submit call of the orchestrator.
	SubmissionID string
	Status       Status
	Step         string

	// IdempotencyKey is the key sent to the store API, set on SUBMITTING. It
	// equals SubmissionID unless the client supplied its own key.
	IdempotencyKey string

	// OrderID is the server-assigned id, zero until the API confirms.
	OrderID int64

	// Payload is the JSON order-create body, written on SUBMITTING only.
	Payload string

	// ErrorMessages is a JSON array of failure texts.
	ErrorMessages string

	TraceID   string
	SpanID    string
	UpdatedAt time.Time
}

// Repository persists entries. The table is append-only.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}

// Reader answers audit queries over saved entries.
type Reader interface {
	// FindByOrder returns the last entry that recorded orderID.
	FindByOrder(ctx context.Context, orderID int64) (*Entry, error)
	// List returns every entry of a submission, oldest first.
	List(ctx context.Context, submissionID string) ([]*Entry, error)
}
