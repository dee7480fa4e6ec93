// Package domaintest builds catalog fixtures for tests.
package domaintest

import (
	"github.com/shopspring/decimal"

	"github.com/genzzone/storefront/internal/domain"
)

// Option customizes a fixture product.
type Option func(*domain.Product)

// NewProduct returns an active product priced at price with the given stock.
func NewProduct(id int64, name, price string, stock int, opts ...Option) *domain.Product {
	p := &domain.Product{
		ID:           id,
		Name:         name,
		RegularPrice: decimal.RequireFromString(price),
		CurrentPrice: decimal.RequireFromString(price),
		Stock:        stock,
		IsActive:     true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithSizes declares a size group.
func WithSizes(label string, options ...string) Option {
	return func(p *domain.Product) {
		p.SizeOptions = append(p.SizeOptions, domain.SizeOptionGroup{Label: label, Options: options})
	}
}

// WithColor adds a color variant.
func WithColor(id int64, name string, order int, active bool) Option {
	return func(p *domain.Product) {
		p.Colors = append(p.Colors, domain.ColorVariant{
			ID:       id,
			Name:     name,
			Image:    "/media/colors/" + name + ".jpg",
			Order:    order,
			IsActive: active,
		})
	}
}

func WithImage(url string) Option {
	return func(p *domain.Product) { p.Image = &url }
}
