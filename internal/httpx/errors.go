package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/checkout"
	"github.com/genzzone/storefront/internal/checkout/submitlog"
	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/draft"
	"github.com/genzzone/storefront/internal/i18n"
	"github.com/genzzone/storefront/internal/receipt"
	"github.com/genzzone/storefront/internal/storefront"
	"github.com/genzzone/storefront/internal/validation"
)

// writeServiceError is the single place service errors become HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	p := printer(r)

	var verr *validation.Error
	if errors.As(err, &verr) {
		resp := ErrorResponse{Error: "invalid_draft", Message: verr.Message, Field: verr.Field}
		if verr.Item >= 0 {
			item := verr.Item
			resp.Item = &item
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	status, code, msg := http.StatusInternalServerError, "internal", ""
	switch {
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		status, code, msg = http.StatusConflict, "submission_in_progress", p.Sprintf(i18n.MsgBusy)
	case errors.Is(err, checkout.ErrAlreadySubmitted):
		status, code, msg = http.StatusConflict, "already_submitted", p.Sprintf(i18n.MsgAlreadySubmitted)
	case errors.Is(err, storefront.ErrLastItem):
		status, code, msg = http.StatusConflict, "last_item", p.Sprintf(i18n.MsgLastItem)
	case errors.Is(err, storefront.ErrDraftNotFound):
		status, code = http.StatusNotFound, "draft_not_found"
	case errors.Is(err, storefront.ErrProductNotFound):
		status, code, msg = http.StatusNotFound, "product_not_found", p.Sprintf(i18n.MsgProductNotFound)
	case errors.Is(err, draft.ErrNoProduct):
		status, code, msg = http.StatusBadRequest, "no_product", p.Sprintf(i18n.MsgNoProduct)
	case errors.Is(err, draft.ErrOutOfStock):
		status, code, msg = http.StatusConflict, "out_of_stock", p.Sprintf(i18n.MsgOutOfStock)
	case errors.Is(err, draft.ErrIndexOutOfRange):
		status, code = http.StatusNotFound, "item_not_found"
	case errors.Is(err, draft.ErrUnknownSizeGroup),
		errors.Is(err, draft.ErrUnknownSizeOption),
		errors.Is(err, draft.ErrColorUnavailable):
		status, code = http.StatusUnprocessableEntity, "invalid_selection"
	case errors.Is(err, storefront.ErrHistoryUnavailable):
		status, code = http.StatusNotImplemented, "history_unavailable"
	case errors.Is(err, submitlog.ErrNotFound):
		status, code = http.StatusNotFound, "submission_not_found"
	case errors.Is(err, receipt.ErrRender):
		status, code, msg = http.StatusInternalServerError, "receipt_failed", p.Sprintf(i18n.MsgReceiptFailed)
	case isServerError(err):
		status, code, msg = http.StatusBadGateway, "store_rejected", userMessage(err, p)
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrTransport):
		status, code, msg = http.StatusServiceUnavailable, "store_unreachable", userMessage(err, p)
	default:
		msg = p.Sprintf(i18n.MsgSubmitFailed)
	}
	if msg == "" {
		msg = err.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, code, msg)
}

func isServerError(err error) bool {
	var serr *domain.ServerError
	return errors.As(err, &serr)
}

func userMessage(err error, p *message.Printer) string {
	return checkout.UserMessage(err, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
