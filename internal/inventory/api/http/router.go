package httpapi

import (
	"github.com/go-chi/chi/v5"

	platformhealth "github.com/shestoi/minimarket/platform/health/http"
)

// NewRouter создаёт и настраивает HTTP роутер Inventory Service.
// readiness используется health endpoint-ом: false означает 503.
func NewRouter(handler *Handler, readiness func() bool) chi.Router {
	router := chi.NewRouter()

	router.Route("/products", func(r chi.Router) {
		r.Post("/", handler.PostProducts)
		r.Get("/{id}", handler.GetProduct)
		r.Post("/{id}/reserve", handler.PostReserve)
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
