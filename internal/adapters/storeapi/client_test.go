package storeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/pkg/interceptors"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	return c, srv
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"})
	assert.Error(t, err)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, "https://api.genzzone.com", c.Origin())
}

func TestGetProduct(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products/7/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "req-1", r.Header.Get("X-Request-Id"))
		_, _ = io.WriteString(w, `{
			"id": 7, "name": "Tee", "regular_price": "650.00", "current_price": "550.00",
			"offer_price": "550.00", "has_offer": true, "stock": 4, "is_active": true,
			"image": "/media/tee.jpg", "image2": null,
			"colors": [{"id": 1, "name": "Black", "image": "media/black.jpg", "order": 0, "is_active": true}],
			"size_options": [{"label": "Size", "options": ["M", "L"]}]
		}`)
	})
	c, srv := newTestClient(t, mux)
	ctx := interceptors.WithRequestID(t.Context(), "req-1")

	p, err := c.GetProduct(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, "Tee", p.Name)
	assert.Equal(t, "550", p.EffectivePrice().String())
	require.NotNil(t, p.Image)
	assert.Equal(t, srv.URL+"/media/tee.jpg", *p.Image)
	assert.Nil(t, p.Image2)
	assert.Equal(t, srv.URL+"/media/black.jpg", p.Colors[0].Image)
}

func TestGetProduct_NotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail": "No Product matches the given query."}`)
	}))

	_, err := c.GetProduct(t.Context(), 99)

	assert.True(t, IsNotFound(err))
	var se *domain.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "No Product matches the given query.", se.Message)
}

func TestGetProduct_CancelledCallerDoesNotFailSharedFetch(t *testing.T) {
	//1. Arrange
	var hits atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			close(entered)
		}
		<-release
		_, _ = io.WriteString(w, `{"id": 7, "name": "Tee", "current_price": "550.00", "stock": 4, "is_active": true}`)
	}))

	firstCtx, cancel := context.WithCancel(t.Context())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetProduct(firstCtx, 7)
		firstErr <- err
	}()
	<-entered

	type result struct {
		p   *domain.Product
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := c.GetProduct(t.Context(), 7)
		second <- result{p, err}
	}()
	time.Sleep(50 * time.Millisecond)

	//2. Act
	cancel()
	err := <-firstErr
	close(release)
	got := <-second

	//3. Assert
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, got.err)
	assert.Equal(t, "Tee", got.p.Name)
	assert.Equal(t, int32(1), hits.Load())
}

func TestListProducts_BareAndPaginated(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": 1, "name": "A", "stock": 1}, {"id": 2, "name": "B", "stock": 0}]`},
		{"paginated", `{"count": 2, "results": [{"id": 1, "name": "A", "stock": 1}, {"id": 2, "name": "B", "stock": 0}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/products/", r.URL.Path)
				assert.Equal(t, "tee", r.URL.Query().Get("search"))
				assert.Equal(t, "men", r.URL.Query().Get("category"))
				_, _ = io.WriteString(w, tt.body)
			}))

			products, err := c.ListProducts(t.Context(), "tee", "men")

			require.NoError(t, err)
			require.Len(t, products, 2)
			assert.Equal(t, "B", products[1].Name)
		})
	}
}

func TestCategoryTree(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/categories/tree/", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id": 1, "name": "Men", "slug": "men", "children": [{"id": 2, "name": "Shirts", "slug": "shirts"}]}]`)
	}))

	tree, err := c.CategoryTree(t.Context())

	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "shirts", tree[0].Children[0].Slug)
}

// csrfAPI sets the csrf cookie from /csrf/ and requires it on order create.
func csrfAPI(t *testing.T, csrfHits, createHits *atomic.Int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/csrf/", func(w http.ResponseWriter, r *http.Request) {
		csrfHits.Add(1)
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "tok-123", Path: "/"})
		_, _ = io.WriteString(w, `{"detail": "CSRF cookie set"}`)
	})
	mux.HandleFunc("POST /api/orders/create/", func(w http.ResponseWriter, r *http.Request) {
		createHits.Add(1)
		ck, err := r.Cookie("csrftoken")
		if err != nil || r.Header.Get("X-CSRFToken") != ck.Value {
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, `{"detail": "CSRF Failed: CSRF token missing."}`)
			return
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "key-1", r.Header.Get("X-Idempotency-Key"))
		assert.NotEmpty(t, r.Header.Get("Origin"))
		assert.NotEmpty(t, r.Header.Get("Referer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Outside Dhaka", body["district"])
		assert.NotContains(t, body, "IdempotencyKey")

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 1042, "status": "pending", "total_amount": "1450.00", "created_at": "2026-03-01T08:30:00Z"}`)
	})
	return mux
}

func TestCreateOrder_PrimesCSRFOnce(t *testing.T) {
	var csrfHits, createHits atomic.Int32
	c, _ := newTestClient(t, csrfAPI(t, &csrfHits, &createHits))
	req := domain.CreateOrderRequest{CustomerName: "Rahim", District: "Outside Dhaka", IdempotencyKey: "key-1"}

	placed, err := c.CreateOrder(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1042), placed.ID)
	assert.Equal(t, "1450", placed.TotalAmount.String())

	_, err = c.CreateOrder(t.Context(), req)
	require.NoError(t, err)

	assert.Equal(t, int32(1), csrfHits.Load())
	assert.Equal(t, int32(2), createHits.Load())
}

func TestCreateOrder_CSRFRejection(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/csrf/" {
			return // no cookie
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"detail": "CSRF Failed: CSRF cookie not set."}`)
	}))

	_, err := c.CreateOrder(t.Context(), domain.CreateOrderRequest{})

	assert.ErrorIs(t, err, domain.ErrCSRFRejected)
}

func TestCreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c, err := New(Config{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	srv.Close()

	_, err = c.CreateOrder(t.Context(), domain.CreateOrderRequest{})

	assert.ErrorIs(t, err, domain.ErrTransport)
	var se *domain.ServerError
	assert.False(t, errors.As(err, &se))
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    domain.ErrorKind
		field   string
		message string
	}{
		{"empty body", 500, "", domain.KindGeneric, "", ""},
		{"raw text", 502, "<html>Bad Gateway</html>", domain.KindGeneric, "", "<html>Bad Gateway</html>"},
		{"json string", 400, `"Out of stock"`, domain.KindGeneric, "", "Out of stock"},
		{"detail", 400, `{"detail": "Insufficient stock", "error": "x"}`, domain.KindGeneric, "", "Insufficient stock"},
		{"detail object", 400, `{"detail": {"code": 1}}`, domain.KindGeneric, "", `{"code":1}`},
		{"error before message", 400, `{"error": "bad", "message": "worse"}`, domain.KindGeneric, "", "bad"},
		{"message", 400, `{"message": "nope"}`, domain.KindGeneric, "", "nope"},
		{"string list", 400, `["a", "b"]`, domain.KindGeneric, "", "a b"},
		{"field map", 400, `{"phone_number": ["Enter a valid phone number."], "address": ["This field is required."]}`, domain.KindField, "address", "This field is required."},
		{"unknown object", 400, `{"code": 17}`, domain.KindGeneric, "", `{"code": 17}`},
		{"empty object", 400, `{}`, domain.KindGeneric, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := decodeError(tt.status, []byte(tt.body))

			assert.Equal(t, tt.status, e.Status)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.field, e.Field)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestImageURL(t *testing.T) {
	const origin = "https://api.example.com"
	assert.Equal(t, "", ImageURL(origin, " "))
	assert.Equal(t, "https://cdn.example.com/a.jpg", ImageURL(origin, "https://cdn.example.com/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", ImageURL(origin, "//cdn.example.com/a.jpg"))
	assert.Equal(t, origin+"/media/a.jpg", ImageURL(origin, "/media/a.jpg"))
	assert.Equal(t, origin+"/media/a.jpg", ImageURL(origin+"/", "media/a.jpg"))
}
