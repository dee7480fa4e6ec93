package storefront

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/genzzone/storefront/internal/checkout"
	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/checkout/submitlog/sqlite"
	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/domain/domaintest"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/i18n"
	"github.com/genzzone/storefront/internal/ports/mocks"
	"github.com/genzzone/storefront/internal/validation"
)

type fixture struct {
	catalog   *mocks.Catalog
	orders    *mocks.OrderAPI
	snapshots *mocks.SnapshotStore
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		catalog:   mocks.NewCatalog(t),
		orders:    mocks.NewOrderAPI(t),
		snapshots: mocks.NewSnapshotStore(t),
	}
	f.svc = NewService(Deps{
		Catalog:   f.catalog,
		Orders:    f.orders,
		Snapshots: f.snapshots,
		Validator: validation.New(validation.LocalPhone),
	})
	return f
}

var (
	tee   = domaintest.NewProduct(1, "Tee", "500", 5, domaintest.WithSizes("Size", "M", "L"), domaintest.WithColor(7, "Black", 1, true), domaintest.WithColor(8, "White", 0, true))
	combo = domaintest.NewProduct(2, "Combo", "300", 2, domaintest.WithSizes("Shirt Size", "M"), domaintest.WithSizes("Pants Size", "30"))
)

func (f *fixture) start(t *testing.T) View {
	t.Helper()
	f.catalog.On("GetProduct", mock.Anything, int64(1)).Return(tee, nil).Once()
	v, err := f.svc.StartDraft(t.Context(), 1, nil)
	require.NoError(t, err)
	return v
}

func TestStartDraft(t *testing.T) {
	//1. Arrange
	f := newFixture(t)
	f.catalog.On("GetProduct", mock.Anything, int64(1)).Return(tee, nil).Once()
	color := int64(7)

	//2. Act
	v, err := f.svc.StartDraft(t.Context(), 1, &color)

	//3. Assert
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	require.Equal(t, 1, v.Draft.Lines.Len())
	assert.Equal(t, "Black", v.Draft.Lines.Items()[0].Color.Name)
	assert.Equal(t, domain.OutsideDhaka, v.Draft.Customer.District)
	assert.Equal(t, "650", v.Totals.GrandTotal.String())
	assert.Equal(t, checkout.StateIdle, v.State)
}

func TestStartDraft_Errors(t *testing.T) {
	t.Run("product not found", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("GetProduct", mock.Anything, int64(9)).
			Return(nil, &domain.ServerError{Status: 404, Kind: domain.KindGeneric}).Once()

		_, err := f.svc.StartDraft(t.Context(), 9, nil)

		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("out of stock", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("GetProduct", mock.Anything, int64(3)).
			Return(domaintest.NewProduct(3, "Gone", "100", 0), nil).Once()

		_, err := f.svc.StartDraft(t.Context(), 3, nil)

		assert.ErrorIs(t, err, draft.ErrOutOfStock)
	})

	t.Run("unreachable", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("GetProduct", mock.Anything, int64(1)).
			Return(nil, &domain.TransportError{Op: "GET", Err: errors.New("refused")}).Once()

		_, err := f.svc.StartDraft(t.Context(), 1, nil)

		assert.ErrorIs(t, err, domain.ErrTransport)
		assert.NotErrorIs(t, err, ErrProductNotFound)
	})
}

func TestDraftEditing(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	f.catalog.On("GetProduct", mock.Anything, int64(2)).Return(combo, nil).Once()

	_, err := f.svc.AddItem(t.Context(), v.ID, 2)
	require.NoError(t, err)
	// second add of the same product comes from the session
	v, err = f.svc.AddItem(t.Context(), v.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Draft.Lines.Len())

	v, err = f.svc.SetQuantity(v.ID, 0, 99)
	require.NoError(t, err)
	assert.Equal(t, 5, v.Draft.Lines.Items()[0].Quantity)

	v, err = f.svc.SetSize(v.ID, 0, "Size", "L")
	require.NoError(t, err)
	assert.Equal(t, "L", v.Draft.Lines.Items()[0].Sizes["Size"])

	v, err = f.svc.SetColor(v.ID, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, "White", v.Draft.Lines.Items()[0].Color.Name)

	_, err = f.svc.SetColor(v.ID, 0, 99)
	assert.ErrorIs(t, err, draft.ErrColorUnavailable)

	v, err = f.svc.RemoveItem(v.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, v.Draft.Lines.Len())

	_, err = f.svc.RemoveItem(v.ID, 5)
	assert.ErrorIs(t, err, draft.ErrIndexOutOfRange)

	// 5×500 + 300 + 150
	assert.Equal(t, "2950", v.Totals.GrandTotal.String())
}

func TestRemoveItem_LastItemGuard(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)

	_, err := f.svc.RemoveItem(v.ID, 0)

	assert.ErrorIs(t, err, ErrLastItem)
	v, err = f.svc.View(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Draft.Lines.Len())
}

func TestSetCustomer_MasksPhoneAndRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	name, phone, district := "Rahim", "017-1234-5678 99", domain.InsideDhaka

	v, err := f.svc.SetCustomer(v.ID, CustomerInput{Name: &name, Phone: &phone, District: &district})

	require.NoError(t, err)
	assert.Equal(t, "Rahim", v.Draft.Customer.Name)
	assert.Equal(t, "01712345678", v.Draft.Customer.Phone)
	assert.Empty(t, v.Draft.Customer.Address)
	assert.Equal(t, "580", v.Totals.GrandTotal.String())
}

func TestView_IsACopy(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)

	require.NoError(t, v.Draft.Lines.SetQuantity(0, 3))
	v.Draft.Customer.Name = "changed"

	again, err := f.svc.View(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Draft.Lines.Items()[0].Quantity)
	assert.Empty(t, again.Draft.Customer.Name)
}

func TestUnknownDraft(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.View("missing")
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = f.svc.SetQuantity("missing", 0, 1)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = f.svc.Submit(t.Context(), "missing", i18n.Printer("en"))
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func fill(t *testing.T, f *fixture, id string) {
	t.Helper()
	name, phone, address := "Rahim", "01712345678", "Mirpur 10"
	_, err := f.svc.SetCustomer(id, CustomerInput{Name: &name, Phone: &phone, Address: &address})
	require.NoError(t, err)
	_, err = f.svc.SetSize(id, 0, "Size", "M")
	require.NoError(t, err)
}

func TestSubmit_StoresSnapshotAndClosesDraft(t *testing.T) {
	//1. Arrange
	f := newFixture(t)
	v := f.start(t)
	fill(t, f, v.ID)
	placed := &domain.PlacedOrder{ID: 1042, Status: "pending", CreatedAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
	f.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r domain.CreateOrderRequest) bool {
		return r.TotalPrice == 650 && r.District == "Outside Dhaka" && r.IdempotencyKey != ""
	})).Return(placed, nil).Once()
	f.snapshots.On("Put", mock.Anything, mock.MatchedBy(func(o *domain.CompletedOrder) bool {
		return o.ID == 1042
	})).Return(nil).Once()

	//2. Act
	order, err := f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))

	//3. Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1042), order.ID)
	assert.Equal(t, "650", order.GrandTotal.String())
	_, err = f.svc.View(v.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSubmit_SnapshotFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	fill(t, f, v.ID)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(&domain.PlacedOrder{ID: 7}, nil).Once()
	f.snapshots.On("Put", mock.Anything, mock.Anything).Return(errors.New("redis down")).Once()

	order, err := f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))

	require.NoError(t, err)
	assert.Equal(t, int64(7), order.ID)
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)
	fill(t, f, v.ID)
	rejection := &domain.ServerError{Status: 400, Kind: domain.KindGeneric, Message: "Insufficient stock"}
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, rejection).Once()

	_, err := f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))

	assert.ErrorIs(t, err, rejection)
	v, err = f.svc.View(v.ID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StateFailed, v.State)
	assert.ErrorIs(t, v.LastError, rejection)
	assert.Equal(t, "Rahim", v.Draft.Customer.Name)
}

func TestSubmit_ValidationFailure(t *testing.T) {
	f := newFixture(t)
	v := f.start(t)

	_, err := f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, i18n.MsgNameRequired, verr.Message)
}

func TestCompletedOrderAndReceipt(t *testing.T) {
	f := newFixture(t)
	order := &domain.CompletedOrder{
		ID:            1042,
		PaymentMethod: domain.PaymentMethod,
		Customer:      domain.Customer{Name: "Rahim", District: domain.InsideDhaka},
	}
	f.snapshots.On("Get", mock.Anything, int64(1042)).Return(order, nil)
	f.snapshots.On("Get", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)

	got, err := f.svc.CompletedOrder(t.Context(), 1042)
	require.NoError(t, err)
	assert.Equal(t, "Rahim", got.Customer.Name)

	pdf, err := f.svc.Receipt(t.Context(), 1042)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF-")))

	_, err = f.svc.Receipt(t.Context(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAvailableProducts_FiltersOutOfStock(t *testing.T) {
	f := newFixture(t)
	gone := domaintest.NewProduct(3, "Gone", "100", 0)
	f.catalog.On("ListProducts", mock.Anything, "tee", "").Return([]*domain.Product{tee, gone, combo}, nil).Once()

	got, err := f.svc.AvailableProducts(t.Context(), "tee", "")

	require.NoError(t, err)
	assert.Equal(t, []*domain.Product{tee, combo}, got)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	tree := []domain.Category{{ID: 1, Name: "Men", Slug: "men"}}
	f.catalog.On("CategoryTree", mock.Anything).Return(tree, nil).Once()

	got, err := f.svc.Categories(t.Context())

	require.NoError(t, err)
	assert.Equal(t, tree, got)
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	old := f.start(t)
	now = now.Add(time.Hour)
	fresh := f.start(t)

	closed := f.svc.Sweep(30 * time.Minute)

	assert.Equal(t, 1, closed)
	_, err := f.svc.View(old.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
	_, err = f.svc.View(fresh.ID)
	assert.NoError(t, err)
}

func TestSubmissionHistory(t *testing.T) {
	t.Run("without a readable log", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.SubmissionHistory(t.Context(), 1042)

		assert.ErrorIs(t, err, ErrHistoryUnavailable)
	})

	t.Run("transitions of a retried submission", func(t *testing.T) {
		//1. Arrange
		repo, err := sqlite.Open(filepath.Join(t.TempDir(), "log.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = repo.Close() })
		f := newFixture(t)
		f.svc.submitLog = repo
		v := f.start(t)
		fill(t, f, v.ID)
		csrf := &domain.ServerError{Status: 403, Kind: domain.KindGeneric, Message: "CSRF Failed: CSRF token missing."}
		f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, csrf).Once()
		f.orders.On("RefreshCSRF", mock.Anything).Return(nil).Once()
		f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(&domain.PlacedOrder{ID: 1042}, nil).Once()
		f.snapshots.On("Put", mock.Anything, mock.Anything).Return(nil).Once()
		_, err = f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))
		require.NoError(t, err)

		//2. Act
		entries, err := f.svc.SubmissionHistory(t.Context(), 1042)

		//3. Assert
		require.NoError(t, err)
		var statuses []submitlog.Status
		for _, e := range entries {
			statuses = append(statuses, e.Status)
		}
		assert.Equal(t, []submitlog.Status{
			submitlog.StatusValidating,
			submitlog.StatusSubmitting,
			submitlog.StatusCSRFRetry,
			submitlog.StatusSucceeded,
		}, statuses)

		_, err = f.svc.SubmissionHistory(t.Context(), 1)
		assert.ErrorIs(t, err, submitlog.ErrNotFound)
	})
}

func TestSubmit_ReentrantSubmitWhileStoringSnapshot(t *testing.T) {
	//1. Arrange
	f := newFixture(t)
	v := f.start(t)
	fill(t, f, v.ID)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&domain.PlacedOrder{ID: 1001}, nil).Once()

	var second *domain.CompletedOrder
	var secondErr error
	f.snapshots.On("Put", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			second, secondErr = f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))
		}).
		Return(nil).Once()

	//2. Act
	first, err := f.svc.Submit(t.Context(), v.ID, i18n.Printer("en"))

	//3. Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1001), first.ID)
	assert.Nil(t, second)
	assert.ErrorIs(t, secondErr, ErrDraftNotFound)
	f.orders.AssertNumberOfCalls(t, "CreateOrder", 1)
}
