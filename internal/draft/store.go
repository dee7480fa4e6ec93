// Package draft holds the mutable state of an order being composed: the
// ordered line items and the customer form.
package draft

import (
	"errors"
	"fmt"
	"maps"

	"github.com/genzzone/storefront/internal/domain"
)

var (
	ErrNoProduct         = errors.New("draft: no product")
	ErrOutOfStock        = errors.New("draft: product is out of stock")
	ErrIndexOutOfRange   = errors.New("draft: line index out of range")
	ErrUnknownSizeGroup  = errors.New("draft: unknown size group")
	ErrUnknownSizeOption = errors.New("draft: unknown size option")
	ErrColorUnavailable  = errors.New("draft: color not available")
)

// LineItem is one product entry of the draft. Product is shared and must not
// be mutated.
type LineItem struct {
	Product  *domain.Product
	Quantity int
	Sizes    map[string]string
	Color    *domain.ColorVariant
}

func newLineItem(p *domain.Product, colorID *int64) (LineItem, error) {
	if p == nil {
		return LineItem{}, ErrNoProduct
	}
	if !p.InStock() {
		return LineItem{}, fmt.Errorf("%w: product %d", ErrOutOfStock, p.ID)
	}
	return LineItem{
		Product:  p,
		Quantity: 1,
		Sizes:    map[string]string{},
		Color:    p.DefaultColor(colorID),
	}, nil
}

// clone copies the selections; the product stays shared.
func (li LineItem) clone() LineItem {
	out := li
	out.Sizes = maps.Clone(li.Sizes)
	if out.Sizes == nil {
		out.Sizes = map[string]string{}
	}
	if li.Color != nil {
		c := *li.Color
		out.Color = &c
	}
	return out
}

// Store is the ordered line-item collection.
type Store struct {
	items []LineItem
}

// Initialize replaces the contents with a single line for p.
func (s *Store) Initialize(p *domain.Product, colorID *int64) error {
	li, err := newLineItem(p, colorID)
	if err != nil {
		return err
	}
	s.items = []LineItem{li}
	return nil
}

// AddItem appends a line. The same product may appear on several lines.
func (s *Store) AddItem(p *domain.Product) error {
	li, err := newLineItem(p, nil)
	if err != nil {
		return err
	}
	s.items = append(s.items, li)
	return nil
}

// RemoveItem drops the line at index. Removing the last line is allowed here;
// callers that need a non-empty order must guard it.
func (s *Store) RemoveItem(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// SetQuantity stores value clamped into [1, stock].
func (s *Store) SetQuantity(index, value int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.items[index].Quantity = Clamp(value, s.items[index].Product.Stock)
	return nil
}

// SetSizeSelection selects value for the group; selecting the current value
// again clears the selection.
func (s *Store) SetSizeSelection(index int, label, value string) error {
	if err := s.check(index); err != nil {
		return err
	}
	item := &s.items[index]
	group, ok := item.Product.SizeGroup(label)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSizeGroup, label)
	}
	if !group.Has(value) {
		return fmt.Errorf("%w: %q in %q", ErrUnknownSizeOption, value, label)
	}
	if item.Sizes[label] == value {
		delete(item.Sizes, label)
		return nil
	}
	item.Sizes[label] = value
	return nil
}

// SetColor selects an active variant of the line's product.
func (s *Store) SetColor(index int, colorID int64) error {
	if err := s.check(index); err != nil {
		return err
	}
	c := s.items[index].Product.ActiveColor(colorID)
	if c == nil {
		return fmt.Errorf("%w: %d", ErrColorUnavailable, colorID)
	}
	s.items[index].Color = c
	return nil
}

// Len is the number of lines.
func (s *Store) Len() int { return len(s.items) }

// Items returns the live slice; callers must treat it as read-only.
func (s *Store) Items() []LineItem { return s.items }

// Clone returns an independent copy of the store.
func (s *Store) Clone() Store {
	out := Store{items: make([]LineItem, len(s.items))}
	for i, li := range s.items {
		out.items[i] = li.clone()
	}
	return out
}

func (s *Store) check(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.items))
	}
	return nil
}

// Clamp bounds a requested quantity into [1, stock]. A stock of zero still
// yields 1.
func Clamp(value, stock int) int {
	if value > stock {
		value = stock
	}
	if value < 1 {
		value = 1
	}
	return value
}
