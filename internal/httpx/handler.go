package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/genzzone/storefront/internal/receipt"
	"github.com/genzzone/storefront/internal/storefront"
)

// Handler serves the order page: the product picker, the draft session, the
// success screen and the receipt download.
type Handler struct {
	svc           *storefront.Service
	defaultLocale string
}

// NewHandler serves svc. defaultLocale is used when the request names none.
func NewHandler(svc *storefront.Service, defaultLocale string) *Handler {
	return &Handler{svc: svc, defaultLocale: defaultLocale}
}

// Health answers 200 while the process is up.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListProducts returns the in-stock products for the picker.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.svc.AvailableProducts(r.Context(), q.Get("search"), q.Get("category"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Categories returns the category tree for the picker filter.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.Categories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// StartDraft opens a draft seeded with one product and answers 201.
func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	var req StartDraftRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	v, err := h.svc.StartDraft(r.Context(), req.ProductID, req.ColorID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/drafts/"+v.ID)
	writeJSON(w, http.StatusCreated, mapDraftToResponse(v, ""))
}

// GetDraft returns the draft with live totals and, after a failed submission,
// the message to show.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.View(chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	msg := ""
	if v.LastError != nil {
		msg = userMessage(v.LastError, printer(r))
	}
	writeJSON(w, http.StatusOK, mapDraftToResponse(v, msg))
}

// AddItem appends a line for another product.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}
	v, err := h.svc.AddItem(r.Context(), chi.URLParam(r, "draftID"), req.ProductID)
	h.writeDraft(w, r, v, err)
}

// RemoveItem drops a line. The last line cannot be removed.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	v, err := h.svc.RemoveItem(chi.URLParam(r, "draftID"), index)
	h.writeDraft(w, r, v, err)
}

func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var req QuantityRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.SetQuantity(chi.URLParam(r, "draftID"), index, req.Quantity)
	h.writeDraft(w, r, v, err)
}

// SetSize toggles a size selection of a line.
func (h *Handler) SetSize(w http.ResponseWriter, r *http.Request) {
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var req SizeRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.SetSize(chi.URLParam(r, "draftID"), index, req.Label, req.Value)
	h.writeDraft(w, r, v, err)
}

func (h *Handler) SetColor(w http.ResponseWriter, r *http.Request) {
	index, ok := itemIndex(w, r)
	if !ok {
		return
	}
	var req ColorRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.SetColor(chi.URLParam(r, "draftID"), index, req.ColorID)
	h.writeDraft(w, r, v, err)
}

// SetCustomer updates the customer fields that are present in the body.
// The phone number is masked.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if !decode(w, r, &req) {
		return
	}
	v, err := h.svc.SetCustomer(chi.URLParam(r, "draftID"), storefront.CustomerInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
		District: req.District,
	})
	h.writeDraft(w, r, v, err)
}

// Submit places the order. The response carries the completed-order snapshot
// and where to download its receipt.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")
	order, err := h.svc.Submit(r.Context(), draftID, printer(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	location := "/orders/" + strconv.FormatInt(order.ID, 10)
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusCreated, OrderResponse{Order: order, ReceiptURL: location + "/receipt.pdf"})
}

// GetOrder returns the completed order for the success screen.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.CompletedOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{
		Order:      order,
		ReceiptURL: "/orders/" + strconv.FormatInt(id, 10) + "/receipt.pdf",
	})
}

// SubmissionHistory lists the audit trail of the submission behind an order.
func (h *Handler) SubmissionHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.SubmissionHistory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSubmissionHistory(entries))
}

// Receipt streams the PDF. A render failure answers only this request.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}
	pdf, err := h.svc.Receipt(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(id)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(pdf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := pdf.WriteTo(w); err != nil {
		slog.WarnContext(r.Context(), "receipt write interrupted", "order_id", id, "error", err)
	}
}

func (h *Handler) writeDraft(w http.ResponseWriter, r *http.Request, v storefront.View, err error) {
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDraftToResponse(v, ""))
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func itemIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid_index", "item index must be a non-negative integer")
		return 0, false
	}
	return index, true
}

func orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return 0, false
	}
	return id, true
}
