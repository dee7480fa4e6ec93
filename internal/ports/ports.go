package ports

import (
	"context"

	"github.com/genzzone/storefront/internal/domain"
)

// Catalog reads products and categories from the store API.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, search, category string) ([]*domain.Product, error)
	CategoryTree(ctx context.Context) ([]domain.Category, error)
}

// OrderAPI creates orders. RefreshCSRF fetches a fresh anti-forgery cookie
// into the session that CreateOrder uses.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.PlacedOrder, error)
	RefreshCSRF(ctx context.Context) error
}

// SnapshotStore keeps completed orders for the success screen and receipt.
type SnapshotStore interface {
	Put(ctx context.Context, order *domain.CompletedOrder) error
	Get(ctx context.Context, id int64) (*domain.CompletedOrder, error)
}
