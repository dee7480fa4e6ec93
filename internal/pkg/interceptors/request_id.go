// Package interceptors carries request correlation ids from inbound HTTP
// requests to outbound store API calls.
package interceptors

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/genzzone/storefront/internal/pkg/interceptors/constants"
)

// AttachRequestMetadata copies chi's request id and any client idempotency
// key into the context. Must run after middleware.RequestID.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := context.WithValue(r.Context(), constants.ContextKeyRequestID, requestID)
		if idempotencyKey != "" {
			ctx = context.WithValue(ctx, constants.ContextKeyIdempotencyKey, idempotencyKey)
		}
		w.Header().Set(constants.HeaderXRequestId, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request id stored by AttachRequestMetadata.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	return id
}

// IdempotencyKey returns the client's X-Idempotency-Key, empty when none
// was sent.
func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	return key
}

// WithRequestID is used where no inbound request exists, e.g. in tests.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

// PropagatingTransport stamps the context's request id on outbound requests.
type PropagatingTransport struct {
	Base http.RoundTripper
}

func (t PropagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if id := RequestID(req.Context()); id != "" && req.Header.Get(constants.HeaderXRequestId) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(constants.HeaderXRequestId, id)
	}
	slog.DebugContext(req.Context(), "store api call", "method", req.Method, "path", req.URL.Path)
	return base.RoundTrip(req)
}
