// Package storefront holds the draft sessions of the order page. Each session
// owns one draft and one orchestrator and is mutated under its own lock.
package storefront

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/checkout"
	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/metric"
	"github.com/genzzone/storefront/internal/ports"
	"github.com/genzzone/storefront/internal/pricing"
	"github.com/genzzone/storefront/internal/receipt"
	"github.com/genzzone/storefront/internal/validation"
)

var (
	ErrDraftNotFound   = errors.New("storefront: draft not found")
	ErrLastItem        = errors.New("storefront: an order needs at least one line")
	ErrProductNotFound = errors.New("storefront: product not found")

	// ErrHistoryUnavailable means the submission log is off or write-only.
	ErrHistoryUnavailable = errors.New("storefront: submission history unavailable")
)

// Service holds the open draft sessions and runs every draft operation.
// Safe for concurrent use; each session is mutated under its own lock.
type Service struct {
	catalog   ports.Catalog
	orders    ports.OrderAPI
	snapshots ports.SnapshotStore
	validator *validation.Validator
	submitLog submitlog.Repository
	receipts  *receipt.Generator
	newID     func() string
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu       sync.Mutex
	draft    *draft.Draft
	orch     *checkout.Orchestrator
	products map[int64]*domain.Product
	lastUsed atomic.Int64
}

// Deps are the collaborators of a Service. SubmitLog may be nil.
type Deps struct {
	Catalog   ports.Catalog
	Orders    ports.OrderAPI
	Snapshots ports.SnapshotStore
	Validator *validation.Validator
	SubmitLog submitlog.Repository
	Receipts  *receipt.Generator
}

func NewService(d Deps) *Service {
	if d.Receipts == nil {
		d.Receipts = receipt.NewGenerator(receipt.Config{})
	}
	return &Service{
		catalog:   d.Catalog,
		orders:    d.Orders,
		snapshots: d.Snapshots,
		validator: d.Validator,
		submitLog: d.SubmitLog,
		receipts:  d.Receipts,
		newID:     uuid.NewString,
		now:       time.Now,
		sessions:  map[string]*session{},
	}
}

// View is a read-only copy of a draft with its totals computed on demand.
type View struct {
	ID        string
	Draft     draft.Draft
	Totals    pricing.Totals
	State     checkout.State
	LastError error
}

// CustomerInput carries the form fields to change. Nil fields are left as they are.
type CustomerInput struct {
	Name     *string
	Phone    *string
	Address  *string
	District *domain.District
}

// StartDraft opens a session seeded with one line for productID.
func (s *Service) StartDraft(ctx context.Context, productID int64, colorID *int64) (View, error) {
	p, err := s.product(ctx, nil, productID)
	if err != nil {
		return View{}, err
	}
	d := draft.New()
	if err := d.Lines.Initialize(p, colorID); err != nil {
		return View{}, err
	}

	sess := &session{
		draft:    d,
		orch:     checkout.NewOrchestrator(s.orders, s.validator, s.submitLog),
		products: map[int64]*domain.Product{p.ID: p},
	}
	sess.lastUsed.Store(s.now().UnixNano())
	id := s.newID()

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	metric.ActiveDrafts.Inc()

	slog.InfoContext(ctx, "draft started", "draft_id", id, "product_id", productID)
	return s.view(id, sess), nil
}

// View returns a copy of the draft with its totals.
func (s *Service) View(id string) (View, error) {
	var v View
	err := s.with(id, func(sess *session) error {
		v = s.view(id, sess)
		return nil
	})
	return v, err
}

// AddItem appends a line. A product already in the draft is reused rather
// than fetched again.
func (s *Service) AddItem(ctx context.Context, id string, productID int64) (View, error) {
	return s.mutate(id, func(sess *session) error {
		p, err := s.product(ctx, sess, productID)
		if err != nil {
			return err
		}
		return sess.draft.Lines.AddItem(p)
	})
}

// RemoveItem drops a line, refusing with ErrLastItem when it is the only one.
func (s *Service) RemoveItem(id string, index int) (View, error) {
	return s.mutate(id, func(sess *session) error {
		if sess.draft.Lines.Len() == 1 && index == 0 {
			return ErrLastItem
		}
		return sess.draft.Lines.RemoveItem(index)
	})
}

// SetQuantity clamps the quantity into [1, stock].
func (s *Service) SetQuantity(id string, index, quantity int) (View, error) {
	return s.mutate(id, func(sess *session) error {
		return sess.draft.Lines.SetQuantity(index, quantity)
	})
}

func (s *Service) SetSize(id string, index int, label, value string) (View, error) {
	return s.mutate(id, func(sess *session) error {
		return sess.draft.Lines.SetSizeSelection(index, label, value)
	})
}

func (s *Service) SetColor(id string, index int, colorID int64) (View, error) {
	return s.mutate(id, func(sess *session) error {
		return sess.draft.Lines.SetColor(index, colorID)
	})
}

// SetCustomer updates the form. The phone is masked to the configured format
// as it is stored.
func (s *Service) SetCustomer(id string, in CustomerInput) (View, error) {
	return s.mutate(id, func(sess *session) error {
		c := &sess.draft.Customer
		if in.Name != nil {
			c.Name = *in.Name
		}
		if in.Phone != nil {
			c.Phone = s.validator.PhoneFormat().Mask(*in.Phone)
		}
		if in.Address != nil {
			c.Address = *in.Address
		}
		if in.District != nil {
			c.District = *in.District
		}
		return nil
	})
}

// Submit sends a copy of the draft. On success the session is closed before
// the snapshot is stored for the success screen, so the draft cannot be sent
// again.
func (s *Service) Submit(ctx context.Context, id string, p *message.Printer) (*domain.CompletedOrder, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	d := sess.draft.Clone()
	sess.lastUsed.Store(s.now().UnixNano())
	sess.mu.Unlock()

	order, err := sess.orch.Submit(ctx, d, p)
	if err != nil {
		return nil, err
	}

	s.close(id)
	if err := s.snapshots.Put(ctx, order); err != nil {
		slog.ErrorContext(ctx, "failed to store order snapshot", "order_id", order.ID, "error", err)
	}
	return order, nil
}

// CompletedOrder reads a stored snapshot. Unknown or expired orders wrap
// domain.ErrNotFound.
func (s *Service) CompletedOrder(ctx context.Context, orderID int64) (*domain.CompletedOrder, error) {
	o, err := s.snapshots.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("completed order %d: %w", orderID, err)
	}
	return o, nil
}

// Receipt renders the PDF of a completed order. A render failure leaves the
// stored snapshot as it was.
func (s *Service) Receipt(ctx context.Context, orderID int64) (*bytes.Buffer, error) {
	o, err := s.CompletedOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	pages, err := s.receipts.Render(&buf, o)
	if err != nil {
		slog.ErrorContext(ctx, "receipt render failed", "order_id", orderID, "error", err)
		return nil, err
	}
	slog.DebugContext(ctx, "receipt rendered", "order_id", orderID, "pages", pages, "bytes", buf.Len())
	return &buf, nil
}

// SubmissionHistory returns the logged transitions of the submission that
// created orderID, oldest first.
func (s *Service) SubmissionHistory(ctx context.Context, orderID int64) ([]*submitlog.Entry, error) {
	reader, ok := s.submitLog.(submitlog.Reader)
	if !ok {
		return nil, ErrHistoryUnavailable
	}
	last, err := reader.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return reader.List(ctx, last.SubmissionID)
}

// AvailableProducts lists what the picker may add: products with stock left.
func (s *Service) AvailableProducts(ctx context.Context, search, category string) ([]*domain.Product, error) {
	all, err := s.catalog.ListProducts(ctx, search, category)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if p != nil && p.InStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.catalog.CategoryTree(ctx)
}

// Sweep closes sessions idle for longer than maxIdle that have no submission
// in flight and reports how many it closed.
func (s *Service) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	closed := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Load() < cutoff && !sess.orch.Submitting() {
			delete(s.sessions, id)
			closed++
		}
	}
	metric.ActiveDrafts.Sub(float64(closed))
	return closed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				slog.InfoContext(ctx, "closed idle drafts", "count", n)
			}
		}
	}
}

func (s *Service) session(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	return sess, nil
}

func (s *Service) close(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		metric.ActiveDrafts.Dec()
	}
}

func (s *Service) with(id string, fn func(*session) error) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastUsed.Store(s.now().UnixNano())
	return fn(sess)
}

func (s *Service) mutate(id string, fn func(*session) error) (View, error) {
	var v View
	err := s.with(id, func(sess *session) error {
		if err := fn(sess); err != nil {
			return err
		}
		v = s.view(id, sess)
		return nil
	})
	return v, err
}

// view copies the session state. Caller holds sess.mu or owns sess.
func (s *Service) view(id string, sess *session) View {
	d := sess.draft.Clone()
	return View{
		ID:        id,
		Draft:     d,
		Totals:    pricing.ComputeTotals(d.Lines.Items(), d.Customer.District),
		State:     sess.orch.State(),
		LastError: sess.orch.LastError(),
	}
}

// product returns the session's copy of the product, fetching it on first use.
func (s *Service) product(ctx context.Context, sess *session, id int64) (*domain.Product, error) {
	if sess != nil {
		if p, ok := sess.products[id]; ok {
			return p, nil
		}
	}
	p, err := s.catalog.GetProduct(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if sess != nil {
		sess.products[id] = p
	}
	return p, nil
}
