package httpapi

import (
	"github.com/go-chi/chi/v5"

	platformhealth "github.com/shestoi/minimarket/platform/health/http"
)

// NewRouter создаёт и настраивает HTTP роутер Order Service.
// readiness используется health endpoint-ом: false означает 503
// (например, потеряно подключение к PostgreSQL).
func NewRouter(handler *Handler, readiness func() bool) chi.Router {
	router := chi.NewRouter()

	router.Route("/orders", func(r chi.Router) {
		r.Post("/", handler.PostOrders)
		r.Get("/{id}", handler.GetOrder)
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
