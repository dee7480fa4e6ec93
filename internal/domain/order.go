package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// District classifies the delivery zone and drives the delivery fee.
type District string

const (
	InsideDhaka  District = "inside_dhaka"
	OutsideDhaka District = "outside_dhaka"
)

// DefaultDistrict is preselected on a fresh draft.
const DefaultDistrict = OutsideDhaka

// PaymentMethod is the only payment method offered.
const PaymentMethod = "Cash on Delivery (COD)"

// Valid reports whether d is one of the two delivery zones.
func (d District) Valid() bool { return d == InsideDhaka || d == OutsideDhaka }

// WireName is the district spelling the order API expects.
func (d District) WireName() string {
	switch d {
	case InsideDhaka:
		return "Dhaka"
	case OutsideDhaka:
		return "Outside Dhaka"
	}
	return string(d)
}

// Customer is the contact and delivery part of the order form.
type Customer struct {
	Name     string   `json:"customer_name"`
	Phone    string   `json:"phone_number"`
	Address  string   `json:"address"`
	District District `json:"district"`
}

// CreateOrderLine is one product in the order-create payload.
type CreateOrderLine struct {
	ProductID    int64             `json:"product_id"`
	ProductName  string            `json:"product_name"`
	ProductSizes map[string]string `json:"product_sizes"`
	ProductColor string            `json:"product_color"`
	ProductImage *string           `json:"product_image"`
	Quantity     int               `json:"quantity"`
	UnitPrice    float64           `json:"unit_price"`
	ProductTotal float64           `json:"product_total"`
}

// CreateOrderRequest is the body of POST /orders/create/.
type CreateOrderRequest struct {
	CustomerName   string            `json:"customer_name"`
	District       string            `json:"district"`
	Address        string            `json:"address"`
	PhoneNumber    string            `json:"phone_number"`
	Products       []CreateOrderLine `json:"products"`
	ProductTotal   float64           `json:"product_total"`
	DeliveryCharge float64           `json:"delivery_charge"`
	TotalPrice     float64           `json:"total_price"`

	// IdempotencyKey travels as a header, never in the body.
	IdempotencyKey string `json:"-"`
}

// PlacedOrder is the API's confirmation of a created order.
type PlacedOrder struct {
	ID              int64           `json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress string          `json:"shipping_address"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ItemSnapshot is a line item frozen at confirmation time.
type ItemSnapshot struct {
	ProductID   int64             `json:"product_id"`
	ProductName string            `json:"product_name"`
	Image       *string           `json:"image,omitempty"`
	SizeLabels  []string          `json:"size_labels"`
	Sizes       map[string]string `json:"sizes"`
	Color       *ColorVariant     `json:"color,omitempty"`
	Quantity    int               `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	LineTotal   decimal.Decimal   `json:"line_total"`
}

// CompletedOrder is an immutable copy of everything that was submitted and
// confirmed. It shares no memory with the draft it was taken from.
type CompletedOrder struct {
	ID             int64           `json:"id"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	Customer       Customer        `json:"customer"`
	PaymentMethod  string          `json:"payment_method"`
	Items          []ItemSnapshot  `json:"items"`
	ProductTotal   decimal.Decimal `json:"product_total"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}
