// Package checkout submits a draft to the store API and captures the
// completed-order snapshot.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/metric"
	"github.com/genzzone/storefront/internal/pkg/interceptors"
	"github.com/genzzone/storefront/internal/ports"
	"github.com/genzzone/storefront/internal/validation"
)

// State is the position of the orchestrator in the submission lifecycle.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var (
	ErrSubmissionInProgress = errors.New("checkout: submission already in progress")

	// ErrAlreadySubmitted is returned once a submission of this draft succeeded.
	ErrAlreadySubmitted = errors.New("checkout: draft already submitted")
)

var tracer = otel.Tracer("github.com/genzzone/storefront/internal/checkout")

// Orchestrator runs submissions for one draft session. At most one
// submission is in flight at a time and none is accepted after a success.
type Orchestrator struct {
	api       ports.OrderAPI
	validator *validation.Validator
	repo      submitlog.Repository // nil-safe
	newID     func() string

	inFlight atomic.Bool

	mu      sync.Mutex
	state   State
	lastErr error
}

// NewOrchestrator wires the order API and validator. repo may be nil, in which
// case transitions are only logged.
func NewOrchestrator(api ports.OrderAPI, v *validation.Validator, repo submitlog.Repository) *Orchestrator {
	return &Orchestrator{
		api:       api,
		validator: v,
		repo:      repo,
		newID:     uuid.NewString,
		state:     StateIdle,
	}
}

// State is the state of the latest submission, StateIdle before the first.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastError is the error of the most recent failed submission, nil otherwise.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Submitting reports whether a submission is in flight.
func (o *Orchestrator) Submitting() bool { return o.inFlight.Load() }

// Submit validates d and creates the order. The idempotency key is the
// client's X-Idempotency-Key when one came with the request, otherwise the
// submission id. A CSRF rejection of the create call is followed by exactly
// one cookie refresh and one more create call. Validation failures never
// reach the network. d should be a private copy;
// the returned snapshot never aliases it.
func (o *Orchestrator) Submit(ctx context.Context, d draft.Draft, p *message.Printer) (*domain.CompletedOrder, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		metric.SubmissionsTotal.WithLabelValues("busy").Inc()
		return nil, ErrSubmissionInProgress
	}
	defer o.inFlight.Store(false)
	if o.State() == StateSucceeded {
		metric.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		return nil, ErrAlreadySubmitted
	}

	id := o.newID()
	ctx, span := tracer.Start(ctx, "checkout.Submit")
	defer span.End()
	span.SetAttributes(
		attribute.String("submission.id", id),
		attribute.Int("order.items", d.Lines.Len()),
	)

	o.transition(ctx, id, StateValidating, nil)
	o.save(ctx, submitlog.NewEntry(ctx, id, submitlog.StatusValidating, "validate"))
	if err := o.validator.Validate(&d, p); err != nil {
		return nil, o.fail(ctx, id, "validate", "invalid", err)
	}

	req := BuildRequest(&d)
	req.IdempotencyKey = interceptors.IdempotencyKey(ctx)
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = id
	}

	o.transition(ctx, id, StateSubmitting, nil)
	entry := submitlog.NewEntry(ctx, id, submitlog.StatusSubmitting, "create_order")
	entry.IdempotencyKey = req.IdempotencyKey
	if b, err := json.Marshal(req); err == nil {
		entry.Payload = string(b)
	}
	o.save(ctx, entry)

	placed, err := o.create(ctx, id, req)
	if err != nil {
		return nil, o.fail(ctx, id, "create_order", outcome(err), err)
	}

	order := Snapshot(placed, &d)
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	o.transition(ctx, id, StateSucceeded, nil)
	done := submitlog.NewEntry(ctx, id, submitlog.StatusSucceeded, "create_order")
	done.OrderID = order.ID
	o.save(ctx, done)
	metric.SubmissionsTotal.WithLabelValues("succeeded").Inc()

	slog.InfoContext(ctx, "order created",
		"submission_id", id,
		"order_id", order.ID,
		"items", len(order.Items),
		"grand_total", order.GrandTotal.String(),
	)
	return order, nil
}

// create issues the create call, refreshing the CSRF cookie and retrying once
// when the first attempt is rejected for a missing token.
func (o *Orchestrator) create(ctx context.Context, id string, req domain.CreateOrderRequest) (*domain.PlacedOrder, error) {
	placed, err := o.api.CreateOrder(ctx, req)
	if err == nil {
		return placed, nil
	}
	if !errors.Is(err, domain.ErrCSRFRejected) {
		return nil, err
	}

	metric.CSRFRetriesTotal.Inc()
	slog.WarnContext(ctx, "order create rejected for csrf, refreshing cookie", "submission_id", id)
	o.save(ctx, submitlog.NewEntry(ctx, id, submitlog.StatusCSRFRetry, "refresh_csrf", err.Error()))

	if rerr := o.api.RefreshCSRF(ctx); rerr != nil {
		return nil, fmt.Errorf("refresh csrf after %w: %w", err, rerr)
	}
	return o.api.CreateOrder(ctx, req)
}

func (o *Orchestrator) fail(ctx context.Context, id, step, result string, err error) error {
	o.transition(ctx, id, StateFailed, err)
	o.save(ctx, submitlog.NewEntry(ctx, id, submitlog.StatusFailed, step, err.Error()))
	metric.SubmissionsTotal.WithLabelValues(result).Inc()

	level := slog.LevelError
	if result == "invalid" {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "order submission failed", "submission_id", id, "step", step, "error", err)
	return err
}

func (o *Orchestrator) transition(ctx context.Context, id string, s State, err error) {
	o.mu.Lock()
	o.state = s
	o.lastErr = err
	o.mu.Unlock()

	if err != nil {
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	slog.DebugContext(ctx, "submission state", "submission_id", id, "state", s)
}

// save writes to the log when one is configured. Log failures never fail the
// submission.
func (o *Orchestrator) save(ctx context.Context, entry *submitlog.Entry) {
	if o.repo == nil {
		return
	}
	if err := o.repo.Save(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to write submission log", "submission_id", entry.SubmissionID, "error", err)
	}
}

func outcome(err error) string {
	var serr *domain.ServerError
	switch {
	case errors.As(err, &serr):
		return "rejected"
	case errors.Is(err, domain.ErrTransport):
		return "unreachable"
	}
	return "failed"
}
