package fakestore

import (
	"github.com/shopspring/decimal"

	"github.com/genzzone/storefront/internal/domain"
)

func ptr(s string) *string { return &s }

// Seeded returns a store with a small demo catalog.
func Seeded() *Store {
	men := "Men"
	products := []*domain.Product{
		{
			ID:           1,
			Name:         "Oversized Drop Shoulder Tee",
			Category:     domain.ProductCategory{Slug: "t-shirts", Name: "T-Shirts", ParentName: &men},
			CategorySlug: "t-shirts",
			RegularPrice: decimal.NewFromInt(650),
			OfferPrice:   decimal.NewNullDecimal(decimal.NewFromInt(550)),
			CurrentPrice: decimal.NewFromInt(550),
			HasOffer:     true,
			Image:        ptr("https://api.genzzone.com/media/products/tee.jpg"),
			Stock:        12,
			IsActive:     true,
			Colors: []domain.ColorVariant{
				{ID: 11, Name: "Black", Image: "https://api.genzzone.com/media/colors/black.jpg", Order: 0, IsActive: true},
				{ID: 12, Name: "Off White", Image: "https://api.genzzone.com/media/colors/white.jpg", Order: 1, IsActive: true},
				{ID: 13, Name: "Olive", Order: 2, IsActive: false},
			},
			SizeOptions: []domain.SizeOptionGroup{{Label: "Size", Options: []string{"M", "L", "XL"}}},
		},
		{
			ID:           2,
			Name:         "Shirt and Pants Combo",
			Category:     domain.ProductCategory{Slug: "combos", Name: "Combos", ParentName: &men},
			CategorySlug: "combos",
			RegularPrice: decimal.NewFromInt(1800),
			CurrentPrice: decimal.NewFromInt(1800),
			Image:        ptr("https://api.genzzone.com/media/products/combo.jpg"),
			Stock:        4,
			IsActive:     true,
			SizeOptions: []domain.SizeOptionGroup{
				{Label: "Shirt Size", Options: []string{"M", "L", "XL"}},
				{Label: "Pants Size", Options: []string{"30", "32", "34"}},
			},
		},
		{
			ID:           3,
			Name:         "Canvas Tote Bag",
			CategorySlug: "accessories",
			Category:     domain.ProductCategory{Slug: "accessories", Name: "Accessories"},
			RegularPrice: decimal.NewFromInt(350),
			CurrentPrice: decimal.NewFromInt(350),
			Stock:        30,
			IsActive:     true,
		},
		{
			ID:           4,
			Name:         "Denim Jacket",
			CategorySlug: "jackets",
			Category:     domain.ProductCategory{Slug: "jackets", Name: "Jackets", ParentName: &men},
			RegularPrice: decimal.NewFromInt(2400),
			CurrentPrice: decimal.NewFromInt(2400),
			Stock:        0,
			IsActive:     true,
			SizeOptions:  []domain.SizeOptionGroup{{Label: "Size", Options: []string{"L", "XL"}}},
		},
	}
	categories := []domain.Category{
		{ID: 1, Name: "Men", Slug: "men", Children: []domain.CategoryChild{
			{ID: 2, Name: "T-Shirts", Slug: "t-shirts"},
			{ID: 3, Name: "Combos", Slug: "combos"},
			{ID: 4, Name: "Jackets", Slug: "jackets"},
		}},
		{ID: 5, Name: "Accessories", Slug: "accessories"},
	}
	return New(products, categories)
}
