// Package fakestore is an in-memory store API for local development and
// demos. It answers like the real API, including the CSRF rejection of an
// order posted before the cookie was fetched.
package fakestore

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/ports"
)

var (
	_ ports.Catalog  = (*Store)(nil)
	_ ports.OrderAPI = (*Store)(nil)
)

// Store implements the catalog and order ports in memory. Safe for
// concurrent use.
type Store struct {
	mu         sync.Mutex
	products   map[int64]*domain.Product
	order      []int64
	categories []domain.Category
	orders     map[int64]*domain.PlacedOrder
	byKey      map[string]int64
	nextID     int64
	csrf       bool
	now        func() time.Time
}

// New serves the given catalog. Products must not be changed afterwards.
func New(products []*domain.Product, categories []domain.Category) *Store {
	s := &Store{
		products:   make(map[int64]*domain.Product, len(products)),
		categories: categories,
		orders:     map[int64]*domain.PlacedOrder{},
		byKey:      map[string]int64{},
		nextID:     1000,
		now:        time.Now,
	}
	for _, p := range products {
		s.products[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

// GetProduct answers 404 for unknown and inactive products, as the API does.
func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || !p.IsActive {
		return nil, &domain.ServerError{Status: http.StatusNotFound, Kind: domain.KindGeneric, Message: "No Product matches the given query."}
	}
	return p, nil
}

// ListProducts matches search against the name and category against the
// category slug, both case-insensitively.
func (s *Store) ListProducts(_ context.Context, search, category string) ([]*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search = strings.ToLower(strings.TrimSpace(search))

	var out []*domain.Product
	for _, id := range s.order {
		p := s.products[id]
		if !p.IsActive {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if category != "" && !strings.EqualFold(p.CategorySlug, category) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// CategoryTree returns the seeded tree unchanged.
func (s *Store) CategoryTree(context.Context) ([]domain.Category, error) {
	return s.categories, nil
}

// RefreshCSRF marks the session as holding a CSRF cookie.
func (s *Store) RefreshCSRF(context.Context) error {
	s.mu.Lock()
	s.csrf = true
	s.mu.Unlock()
	return nil
}

// CreateOrder rejects the first order of a session without a CSRF cookie,
// replays orders by idempotency key and checks stock.
func (s *Store) CreateOrder(_ context.Context, req domain.CreateOrderRequest) (*domain.PlacedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.csrf {
		return nil, &domain.ServerError{Status: http.StatusForbidden, Kind: domain.KindGeneric, Message: "CSRF Failed: CSRF cookie not set."}
	}
	if id, ok := s.byKey[req.IdempotencyKey]; ok && req.IdempotencyKey != "" {
		placed := *s.orders[id]
		return &placed, nil
	}
	if len(req.Products) == 0 {
		return nil, &domain.ServerError{Status: http.StatusBadRequest, Kind: domain.KindField, Field: "products", Message: "This list may not be empty."}
	}
	for _, line := range req.Products {
		p, ok := s.products[line.ProductID]
		if !ok {
			return nil, &domain.ServerError{Status: http.StatusBadRequest, Kind: domain.KindGeneric, Message: fmt.Sprintf("Product %d does not exist", line.ProductID)}
		}
		if line.Quantity > p.Stock {
			return nil, &domain.ServerError{Status: http.StatusBadRequest, Kind: domain.KindGeneric, Message: fmt.Sprintf("Insufficient stock for %s", p.Name)}
		}
	}

	s.nextID++
	placed := &domain.PlacedOrder{
		ID:              s.nextID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.PhoneNumber,
		ShippingAddress: req.Address,
		TotalAmount:     decimal.NewFromFloat(req.TotalPrice).Round(2),
		Status:          "pending",
		CreatedAt:       s.now().UTC(),
	}
	s.orders[placed.ID] = placed
	if req.IdempotencyKey != "" {
		s.byKey[req.IdempotencyKey] = placed.ID
	}
	out := *placed
	return &out, nil
}

// Orders returns how many orders were created.
func (s *Store) Orders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}
