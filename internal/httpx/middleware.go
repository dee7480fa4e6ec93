package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/message"

	"github.com/genzzone/storefront/internal/i18n"
	"github.com/genzzone/storefront/internal/metric"
	"github.com/genzzone/storefront/internal/pkg/interceptors/constants"
)

type printerKey struct{}

// ObserveRequests records latency per route pattern and status.
func ObserveRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metric.ObserveRequest(route, time.Since(start), status)
	})
}

// Localize picks the message printer from ?lang=, then Accept-Language, then
// the configured default.
func (h *Handler) Localize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := r.URL.Query().Get("lang")
		if locale == "" {
			locale = r.Header.Get(constants.HeaderAcceptLanguage)
		}
		if locale == "" {
			locale = h.defaultLocale
		}
		ctx := context.WithValue(r.Context(), printerKey{}, i18n.Printer(locale))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func printer(r *http.Request) *message.Printer {
	if p, ok := r.Context().Value(printerKey{}).(*message.Printer); ok {
		return p
	}
	return i18n.Printer("")
}
