package constants

// contextKey keeps this package's context keys from colliding with others
// that share the same string value.
type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
	HeaderCSRFToken       = "X-CSRFToken"
	HeaderAcceptLanguage  = "Accept-Language"

	// CookieCSRF is the cookie the store API sets from its csrf endpoint.
	CookieCSRF = "csrftoken"

	ContextKeyRequestID      contextKey = "x-request-id"
	ContextKeyIdempotencyKey contextKey = "x-idempotency-key"
)
