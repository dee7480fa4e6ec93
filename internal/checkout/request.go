package checkout

import (
	"maps"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/pricing"
)

// BuildRequest serialises a validated draft into the order-create payload.
// Blank size selections are dropped; money is rounded to two decimals.
func BuildRequest(d *draft.Draft) domain.CreateOrderRequest {
	items := d.Lines.Items()
	totals := pricing.ComputeTotals(items, d.Customer.District)

	lines := make([]domain.CreateOrderLine, len(items))
	for i, item := range items {
		sizes := make(map[string]string, len(item.Sizes))
		for label, value := range item.Sizes {
			if strings.TrimSpace(value) != "" {
				sizes[label] = value
			}
		}
		color := ""
		if item.Color != nil {
			color = item.Color.Name
		}
		lines[i] = domain.CreateOrderLine{
			ProductID:    item.Product.ID,
			ProductName:  item.Product.Name,
			ProductSizes: sizes,
			ProductColor: color,
			ProductImage: copyString(item.Product.Image),
			Quantity:     item.Quantity,
			UnitPrice:    money(item.Product.EffectivePrice()),
			ProductTotal: money(totals.Subtotals[i]),
		}
	}

	return domain.CreateOrderRequest{
		CustomerName:   strings.TrimSpace(d.Customer.Name),
		District:       d.Customer.District.WireName(),
		Address:        strings.TrimSpace(d.Customer.Address),
		PhoneNumber:    strings.TrimSpace(d.Customer.Phone),
		Products:       lines,
		ProductTotal:   money(totals.ProductTotal),
		DeliveryCharge: money(totals.DeliveryCharge),
		TotalPrice:     money(totals.GrandTotal),
	}
}

// Snapshot copies everything the receipt and success screen need out of the
// draft. The result shares no memory with d.
func Snapshot(placed *domain.PlacedOrder, d *draft.Draft) *domain.CompletedOrder {
	items := d.Lines.Items()
	totals := pricing.ComputeTotals(items, d.Customer.District)

	snap := make([]domain.ItemSnapshot, len(items))
	for i, item := range items {
		groups := item.Product.SizeGroups()
		labels := make([]string, len(groups))
		for j, g := range groups {
			labels[j] = g.Label
		}
		var color *domain.ColorVariant
		if item.Color != nil {
			c := *item.Color
			color = &c
		}
		snap[i] = domain.ItemSnapshot{
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Image:       copyString(item.Product.Image),
			SizeLabels:  labels,
			Sizes:       maps.Clone(item.Sizes),
			Color:       color,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.EffectivePrice(),
			LineTotal:   totals.Subtotals[i],
		}
	}

	created := placed.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &domain.CompletedOrder{
		ID:        placed.ID,
		Status:    placed.Status,
		CreatedAt: created,
		Customer: domain.Customer{
			Name:     strings.TrimSpace(d.Customer.Name),
			Phone:    strings.TrimSpace(d.Customer.Phone),
			Address:  strings.TrimSpace(d.Customer.Address),
			District: d.Customer.District,
		},
		PaymentMethod:  domain.PaymentMethod,
		Items:          snap,
		ProductTotal:   totals.ProductTotal,
		DeliveryCharge: totals.DeliveryCharge,
		GrandTotal:     totals.GrandTotal,
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
