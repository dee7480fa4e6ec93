package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/genzzone/storefront/internal/pkg/interceptors"
)

// NewRouter mounts every route of the service on a chi router wrapped in
// an otelhttp handler.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(interceptors.AttachRequestMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(ObserveRequests)
	r.Use(handler.Localize)

	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/products", handler.ListProducts)
	r.Get("/categories", handler.Categories)

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", handler.StartDraft)
		r.Route("/{draftID}", func(r chi.Router) {
			r.Get("/", handler.GetDraft)
			r.Post("/items", handler.AddItem)
			r.Delete("/items/{index}", handler.RemoveItem)
			r.Put("/items/{index}/quantity", handler.SetQuantity)
			r.Put("/items/{index}/sizes", handler.SetSize)
			r.Put("/items/{index}/color", handler.SetColor)
			r.Put("/customer", handler.SetCustomer)
			r.Post("/submit", handler.Submit)
		})
	})

	r.Get("/orders/{orderID}", handler.GetOrder)
	r.Get("/orders/{orderID}/receipt.pdf", handler.Receipt)
	r.Get("/orders/{orderID}/submission", handler.SubmissionHistory)

	return otelhttp.NewHandler(r, "storefront")
}
