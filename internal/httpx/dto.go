package httpx

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/pricing"
	"github.com/genzzone/storefront/internal/storefront"
)

// StartDraftRequest opens a draft for one product, optionally in a given color.
type StartDraftRequest struct {
	ProductID int64  `json:"product_id"`
	ColorID   *int64 `json:"color_id"`
}

// AddItemRequest appends a line for another product.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
}

// QuantityRequest sets a line quantity; it is clamped into [1, stock].
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SizeRequest selects value in the group label. Sending the current value
// again clears it.
type SizeRequest struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ColorRequest picks an active color variant of the line's product.
type ColorRequest struct {
	ColorID int64 `json:"color_id"`
}

// CustomerRequest fields that are absent are left unchanged.
type CustomerRequest struct {
	Name     *string          `json:"customer_name"`
	Phone    *string          `json:"phone_number"`
	Address  *string          `json:"address"`
	District *domain.District `json:"district"`
}

// DraftResponse is the draft with live totals and submission state.
type DraftResponse struct {
	ID       string          `json:"id"`
	Customer domain.Customer `json:"customer"`
	Items    []ItemResponse  `json:"items"`
	Totals   TotalsResponse  `json:"totals"`
	State    string          `json:"state"`
	Error    string          `json:"error,omitempty"`
}

// ItemResponse is one line of a draft, with what the UI needs to edit it.
type ItemResponse struct {
	Index       int                      `json:"index"`
	ProductID   int64                    `json:"product_id"`
	ProductName string                   `json:"product_name"`
	Image       *string                  `json:"image"`
	UnitPrice   decimal.Decimal          `json:"unit_price"`
	Quantity    int                      `json:"quantity"`
	Stock       int                      `json:"stock"`
	SizeOptions []domain.SizeOptionGroup `json:"size_options"`
	Sizes       map[string]string        `json:"sizes"`
	Color       *domain.ColorVariant     `json:"color"`
	Colors      []*domain.ColorVariant   `json:"colors"`
	Subtotal    decimal.Decimal          `json:"subtotal"`
}

type TotalsResponse struct {
	ProductTotal   decimal.Decimal `json:"product_total"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// OrderResponse is a completed order and the path of its receipt.
type OrderResponse struct {
	Order      *domain.CompletedOrder `json:"order"`
	ReceiptURL string                 `json:"receipt_url"`
}

// SubmissionEntryResponse is one logged transition of an order submission.
type SubmissionEntryResponse struct {
	SubmissionID   string          `json:"submission_id"`
	Status         string          `json:"status"`
	Step           string          `json:"step"`
	OrderID        int64           `json:"order_id,omitempty"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Errors         []string        `json:"errors"`
	TraceID        string          `json:"trace_id,omitempty"`
	SpanID         string          `json:"span_id,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ErrorResponse is the body of every error. Field and Item point at the
// offending input when validation failed.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Item    *int   `json:"item,omitempty"`
}

func mapDraftToResponse(v storefront.View, errText string) DraftResponse {
	items := v.Draft.Lines.Items()
	resp := DraftResponse{
		ID:       v.ID,
		Customer: v.Draft.Customer,
		Items:    make([]ItemResponse, len(items)),
		Totals:   mapTotals(v.Totals),
		State:    string(v.State),
		Error:    errText,
	}
	for i, it := range items {
		resp.Items[i] = ItemResponse{
			Index:       i,
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Image:       it.Product.Image,
			UnitPrice:   it.Product.EffectivePrice(),
			Quantity:    it.Quantity,
			Stock:       it.Product.Stock,
			SizeOptions: it.Product.SizeGroups(),
			Sizes:       it.Sizes,
			Color:       it.Color,
			Colors:      it.Product.ActiveColors(),
			Subtotal:    v.Totals.Subtotals[i],
		}
	}
	return resp
}

func mapTotals(t pricing.Totals) TotalsResponse {
	return TotalsResponse{
		ProductTotal:   t.ProductTotal,
		DeliveryCharge: t.DeliveryCharge,
		GrandTotal:     t.GrandTotal,
	}
}

func mapSubmissionHistory(entries []*submitlog.Entry) []SubmissionEntryResponse {
	out := make([]SubmissionEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := SubmissionEntryResponse{
			SubmissionID:   e.SubmissionID,
			Status:         string(e.Status),
			Step:           e.Step,
			OrderID:        e.OrderID,
			IdempotencyKey: e.IdempotencyKey,
			Errors:         []string{},
			TraceID:        e.TraceID,
			SpanID:         e.SpanID,
			UpdatedAt:      e.UpdatedAt,
		}
		if e.Payload != "" && json.Valid([]byte(e.Payload)) {
			resp.Payload = json.RawMessage(e.Payload)
		}
		_ = json.Unmarshal([]byte(e.ErrorMessages), &resp.Errors)
		out = append(out, resp)
	}
	return out
}
