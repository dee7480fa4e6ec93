package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultSizeGroup is assumed for products that declare no size options.
var DefaultSizeGroup = SizeOptionGroup{Label: "Size", Options: []string{"One Size"}}

// ProductCategory is the category embedded in a product.
type ProductCategory struct {
	Slug       string  `json:"slug"`
	Name       string  `json:"name"`
	ParentName *string `json:"parent_name"`
}

// ColorVariant is a selectable color of a product. Inactive variants are
// listed by the API but cannot be chosen.
type ColorVariant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Order    int    `json:"order"`
	IsActive bool   `json:"is_active"`
}

// SizeOptionGroup is one size dimension, e.g. "Shirt Size", and its values.
type SizeOptionGroup struct {
	Label   string   `json:"label"`
	Options []string `json:"options"`
}

// Has reports whether value is one of the group's options.
func (g SizeOptionGroup) Has(value string) bool {
	for _, o := range g.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Product is read-only for the lifetime of an order session.
type Product struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Category     ProductCategory     `json:"category"`
	CategorySlug string              `json:"category_slug"`
	RegularPrice decimal.Decimal     `json:"regular_price"`
	OfferPrice   decimal.NullDecimal `json:"offer_price"`
	CurrentPrice decimal.Decimal     `json:"current_price"`
	HasOffer     bool                `json:"has_offer"`
	Image        *string             `json:"image"`
	Image2       *string             `json:"image2"`
	Image3       *string             `json:"image3"`
	Image4       *string             `json:"image4"`
	Stock        int                 `json:"stock"`
	IsActive     bool                `json:"is_active"`
	Colors       []ColorVariant      `json:"colors"`
	SizeOptions  []SizeOptionGroup   `json:"size_options"`
	CreatedAt    string              `json:"created_at"`
	UpdatedAt    string              `json:"updated_at"`
}

// EffectivePrice is the unit price an order line is charged at.
func (p *Product) EffectivePrice() decimal.Decimal {
	if !p.CurrentPrice.IsZero() {
		return p.CurrentPrice
	}
	if p.HasOffer && p.OfferPrice.Valid {
		return p.OfferPrice.Decimal
	}
	return p.RegularPrice
}

// InStock reports whether the product can be ordered at all.
func (p *Product) InStock() bool { return p.Stock > 0 }

// ActiveColors returns the selectable variants ordered by their sort order.
func (p *Product) ActiveColors() []*ColorVariant {
	var active []*ColorVariant
	for i := range p.Colors {
		if p.Colors[i].IsActive {
			active = append(active, &p.Colors[i])
		}
	}
	sort.SliceStable(active, func(a, b int) bool { return active[a].Order < active[b].Order })
	return active
}

// ActiveColor looks up a selectable variant by id.
func (p *Product) ActiveColor(id int64) *ColorVariant {
	for _, c := range p.ActiveColors() {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// DefaultColor picks the variant matching preferred if it is active, otherwise
// the first active variant, otherwise nil.
func (p *Product) DefaultColor(preferred *int64) *ColorVariant {
	active := p.ActiveColors()
	if len(active) == 0 {
		return nil
	}
	if preferred != nil {
		for _, c := range active {
			if c.ID == *preferred {
				return c
			}
		}
	}
	return active[0]
}

// SizeGroups returns the well-formed declared groups, or DefaultSizeGroup when
// there are none.
func (p *Product) SizeGroups() []SizeOptionGroup {
	var groups []SizeOptionGroup
	for _, g := range p.SizeOptions {
		if g.Label == "" || g.Options == nil {
			continue
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		return []SizeOptionGroup{DefaultSizeGroup}
	}
	return groups
}

// SizeGroup finds a group by its label.
func (p *Product) SizeGroup(label string) (SizeOptionGroup, bool) {
	for _, g := range p.SizeGroups() {
		if g.Label == label {
			return g, true
		}
	}
	return SizeOptionGroup{}, false
}

type CategoryChild struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Category is a top-level category with its children.
type Category struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Children []CategoryChild `json:"children"`
}
