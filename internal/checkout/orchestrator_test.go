package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/domain/domaintest"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/i18n"
	"github.com/genzzone/storefront/internal/pkg/interceptors"
	"github.com/genzzone/storefront/internal/ports/mocks"
	"github.com/genzzone/storefront/internal/validation"
)

type memLog struct {
	mu      sync.Mutex
	entries []*submitlog.Entry
}

func (m *memLog) Save(_ context.Context, e *submitlog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLog) statuses() []submitlog.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]submitlog.Status, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Status
	}
	return out
}

var csrfErr = &domain.ServerError{Status: 403, Kind: domain.KindGeneric, Message: "CSRF Failed: CSRF token missing."}

func setup(t *testing.T) (*mocks.OrderAPI, *memLog, *Orchestrator) {
	api := mocks.NewOrderAPI(t)
	log := &memLog{}
	o := NewOrchestrator(api, validation.New(validation.LocalPhone), log)
	return api, log, o
}

// two lines: P1 500×2 and P2 300×1, outside Dhaka
func validDraft(t *testing.T) *draft.Draft {
	t.Helper()
	p1 := domaintest.NewProduct(1, "P1", "500", 5,
		domaintest.WithSizes("Size", "M", "L"),
		domaintest.WithColor(7, "Black", 0, true),
		domaintest.WithImage("https://api.genzzone.com/media/p1.jpg"),
	)
	p2 := domaintest.NewProduct(2, "P2", "300", 5)

	d := draft.New()
	require.NoError(t, d.Lines.Initialize(p1, nil))
	require.NoError(t, d.Lines.AddItem(p2))
	require.NoError(t, d.Lines.SetQuantity(0, 2))
	require.NoError(t, d.Lines.SetSizeSelection(0, "Size", "M"))
	require.NoError(t, d.Lines.SetSizeSelection(1, "Size", "One Size"))
	d.Customer = domain.Customer{
		Name:     "  Rahim  ",
		Phone:    "01712345678",
		Address:  "Chawkbazar, Chattogram",
		District: domain.OutsideDhaka,
	}
	return d
}

func TestSubmit_Success(t *testing.T) {
	//1. Arrange
	api, log, o := setup(t)
	d := validDraft(t)

	var sent domain.CreateOrderRequest
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.CreateOrderRequest) }).
		Return(&domain.PlacedOrder{ID: 1042, Status: "pending"}, nil).Once()

	//2. Act
	order, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	//3. Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1042), order.ID)
	assert.Equal(t, "1300", order.ProductTotal.String())
	assert.Equal(t, "150", order.DeliveryCharge.String())
	assert.Equal(t, "1450", order.GrandTotal.String())
	assert.Equal(t, domain.PaymentMethod, order.PaymentMethod)
	assert.False(t, order.CreatedAt.IsZero())

	assert.Equal(t, "Rahim", sent.CustomerName)
	assert.Equal(t, "Outside Dhaka", sent.District)
	assert.Equal(t, 1300.0, sent.ProductTotal)
	assert.Equal(t, 150.0, sent.DeliveryCharge)
	assert.Equal(t, 1450.0, sent.TotalPrice)
	require.Len(t, sent.Products, 2)
	assert.Equal(t, "Black", sent.Products[0].ProductColor)
	assert.Equal(t, 1000.0, sent.Products[0].ProductTotal)
	assert.Equal(t, map[string]string{"Size": "M"}, sent.Products[0].ProductSizes)
	assert.Empty(t, sent.Products[1].ProductColor)
	assert.NotEmpty(t, sent.IdempotencyKey)

	assert.Equal(t, StateSucceeded, o.State())
	assert.NoError(t, o.LastError())
	assert.Equal(t, []submitlog.Status{
		submitlog.StatusValidating,
		submitlog.StatusSubmitting,
		submitlog.StatusSucceeded,
	}, log.statuses())
}

func TestSubmit_CSRFRetryOnce(t *testing.T) {
	//1. Arrange
	api, log, o := setup(t)
	d := validDraft(t)

	var calls []string
	var keys []string
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			calls = append(calls, "create")
			keys = append(keys, args.Get(1).(domain.CreateOrderRequest).IdempotencyKey)
		}).
		Return(nil, csrfErr).Once()
	api.On("RefreshCSRF", mock.Anything).
		Run(func(mock.Arguments) { calls = append(calls, "refresh") }).
		Return(nil).Once()
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			calls = append(calls, "create")
			keys = append(keys, args.Get(1).(domain.CreateOrderRequest).IdempotencyKey)
		}).
		Return(&domain.PlacedOrder{ID: 1042}, nil).Once()

	//2. Act
	order, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	//3. Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1042), order.ID)
	assert.Equal(t, []string{"create", "refresh", "create"}, calls)
	require.Len(t, keys, 2)
	assert.Equal(t, keys[0], keys[1])
	assert.Contains(t, log.statuses(), submitlog.StatusCSRFRetry)
}

func TestSubmit_SecondCSRFFailureIsTerminal(t *testing.T) {
	api, _, o := setup(t)
	d := validDraft(t)

	api.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, csrfErr).Twice()
	api.On("RefreshCSRF", mock.Anything).Return(nil).Once()

	order, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	assert.Nil(t, order)
	assert.ErrorIs(t, err, domain.ErrCSRFRejected)
	api.AssertNumberOfCalls(t, "CreateOrder", 2)
	api.AssertNumberOfCalls(t, "RefreshCSRF", 1)
	assert.Equal(t, StateFailed, o.State())
	assert.Equal(t, err, o.LastError())
}

func TestSubmit_RefreshFailureIsTerminal(t *testing.T) {
	api, _, o := setup(t)
	d := validDraft(t)

	netErr := &domain.TransportError{Op: "GET /csrf/", Err: errors.New("connection refused")}
	api.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, csrfErr).Once()
	api.On("RefreshCSRF", mock.Anything).Return(netErr).Once()

	_, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCSRFRejected)
	assert.ErrorIs(t, err, domain.ErrTransport)
	api.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestSubmit_BusinessRejectionHasNoRetry(t *testing.T) {
	api, _, o := setup(t)
	d := validDraft(t)

	stockErr := &domain.ServerError{Status: 400, Kind: domain.KindGeneric, Message: "Insufficient stock for P1"}
	api.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, stockErr).Once()

	_, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	var serr *domain.ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "Insufficient stock for P1", serr.Message)
	api.AssertNumberOfCalls(t, "CreateOrder", 1)
	api.AssertNotCalled(t, "RefreshCSRF", mock.Anything)
}

func TestSubmit_ForbiddenWithoutCSRFHasNoRetry(t *testing.T) {
	api, _, o := setup(t)
	d := validDraft(t)

	api.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, &domain.ServerError{Status: 403, Kind: domain.KindGeneric, Message: "Forbidden"}).Once()

	_, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	require.Error(t, err)
	api.AssertNotCalled(t, "RefreshCSRF", mock.Anything)
}

func TestSubmit_ValidationFailureMakesNoCalls(t *testing.T) {
	api, log, o := setup(t)
	d := validDraft(t)
	require.NoError(t, d.Lines.SetSizeSelection(0, "Size", "M")) // clears it

	_, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))

	require.ErrorIs(t, err, validation.ErrInvalid)
	assert.Equal(t, "Select Size for P1", err.Error())
	api.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "RefreshCSRF", mock.Anything)
	assert.Equal(t, StateFailed, o.State())
	assert.Equal(t, []submitlog.Status{submitlog.StatusValidating, submitlog.StatusFailed}, log.statuses())
}

func TestSubmit_AtMostOneInFlight(t *testing.T) {
	api, _, o := setup(t)
	d := validDraft(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&domain.PlacedOrder{ID: 1}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never reached the api")
	}
	assert.True(t, o.Submitting())
	assert.Equal(t, StateSubmitting, o.State())

	_, err := o.Submit(context.Background(), d.Clone(), i18n.Printer("en"))
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, o.Submitting())
	api.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestSubmit_SnapshotIsIndependentOfDraft(t *testing.T) {
	api, _, o := setup(t)
	d := validDraft(t)
	api.On("CreateOrder", mock.Anything, mock.Anything).Return(&domain.PlacedOrder{ID: 5}, nil).Once()

	// hand over the live draft on purpose; the snapshot must still be a copy
	order, err := o.Submit(context.Background(), *d, i18n.Printer("en"))
	require.NoError(t, err)

	require.NoError(t, d.Lines.SetSizeSelection(0, "Size", "L"))
	require.NoError(t, d.Lines.SetQuantity(0, 5))
	require.NoError(t, d.Lines.SetColor(0, 7))
	d.Lines.Items()[0].Color.Name = "mutated"
	require.NoError(t, d.Lines.RemoveItem(1))
	d.Customer.Name = "Someone else"

	require.Len(t, order.Items, 2)
	assert.Equal(t, "M", order.Items[0].Sizes["Size"])
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Black", order.Items[0].Color.Name)
	assert.Equal(t, "Rahim", order.Customer.Name)
	assert.Equal(t, "1450", order.GrandTotal.String())
}

func TestSubmit_NilLogRepository(t *testing.T) {
	api := mocks.NewOrderAPI(t)
	o := NewOrchestrator(api, validation.New(validation.LocalPhone), nil)
	api.On("CreateOrder", mock.Anything, mock.Anything).Return(&domain.PlacedOrder{ID: 9}, nil).Once()

	_, err := o.Submit(context.Background(), validDraft(t).Clone(), i18n.Printer("en"))
	assert.NoError(t, err)
}

func TestSubmit_ClientIdempotencyKey(t *testing.T) {
	api, log, o := setup(t)
	api.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r domain.CreateOrderRequest) bool {
		return r.IdempotencyKey == "client-key-1"
	})).Return(&domain.PlacedOrder{ID: 11}, nil).Once()
	ctx := interceptors.WithIdempotencyKey(context.Background(), "client-key-1")

	order, err := o.Submit(ctx, validDraft(t).Clone(), i18n.Printer("en"))

	require.NoError(t, err)
	assert.Equal(t, int64(11), order.ID)
	require.Len(t, log.entries, 3)
	submitting := log.entries[1]
	assert.Equal(t, submitlog.StatusSubmitting, submitting.Status)
	assert.Equal(t, "client-key-1", submitting.IdempotencyKey)
	assert.NotEqual(t, "client-key-1", submitting.SubmissionID)
}

func TestSubmit_RefusedAfterSuccess(t *testing.T) {
	//1. Arrange
	api, log, o := setup(t)
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&domain.PlacedOrder{ID: 1042}, nil).Once()
	_, err := o.Submit(context.Background(), validDraft(t).Clone(), i18n.Printer("en"))
	require.NoError(t, err)

	//2. Act
	order, err := o.Submit(context.Background(), validDraft(t).Clone(), i18n.Printer("en"))

	//3. Assert
	assert.Nil(t, order)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Equal(t, StateSucceeded, o.State())
	assert.Len(t, log.statuses(), 3)
	api.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestSubmit_RetryAllowedAfterFailure(t *testing.T) {
	api, _, o := setup(t)
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, &domain.TransportError{Op: "POST /orders/create/", Err: errors.New("timeout")}).Once()
	api.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&domain.PlacedOrder{ID: 7}, nil).Once()

	_, err := o.Submit(context.Background(), validDraft(t).Clone(), i18n.Printer("en"))
	require.ErrorIs(t, err, domain.ErrTransport)
	order, err := o.Submit(context.Background(), validDraft(t).Clone(), i18n.Printer("en"))

	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)
}
