// Package pricing derives order totals from the live line items. Nothing here
// is cached: every total is recomputed from its inputs on each call.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/draft"
)

var (
	insideDhakaFee  = decimal.NewFromInt(80)
	outsideDhakaFee = decimal.NewFromInt(150)
)

// Totals are the derived amounts of a draft. Subtotals is indexed like the
// line items.
type Totals struct {
	Subtotals      []decimal.Decimal `json:"subtotals"`
	ProductTotal   decimal.Decimal   `json:"product_total"`
	DeliveryCharge decimal.Decimal   `json:"delivery_charge"`
	GrandTotal     decimal.Decimal   `json:"grand_total"`
}

// ItemSubtotal is quantity times the effective unit price, unrounded.
func ItemSubtotal(item draft.LineItem) decimal.Decimal {
	return item.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// ProductTotal sums the line subtotals, rounded to two decimals.
func ProductTotal(items []draft.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(ItemSubtotal(item))
	}
	return total.Round(2)
}

// DeliveryCharge is a fixed schedule: 80 inside Dhaka, 150 everywhere else.
func DeliveryCharge(d domain.District) decimal.Decimal {
	if d == domain.InsideDhaka {
		return insideDhakaFee
	}
	return outsideDhakaFee
}

// ComputeTotals derives every amount shown and sent for a draft.
func ComputeTotals(items []draft.LineItem, d domain.District) Totals {
	subtotals := make([]decimal.Decimal, len(items))
	for i, item := range items {
		subtotals[i] = ItemSubtotal(item).Round(2)
	}
	product := ProductTotal(items)
	delivery := DeliveryCharge(d)
	return Totals{
		Subtotals:      subtotals,
		ProductTotal:   product,
		DeliveryCharge: delivery,
		GrandTotal:     product.Add(delivery).Round(2),
	}
}
