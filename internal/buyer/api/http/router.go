package httpapi

import (
	"github.com/go-chi/chi/v5"

	platformhealth "github.com/shestoi/minimarket/platform/health/http"
)

// NewRouter создаёт и настраивает HTTP роутер Buyer Service
func NewRouter(handler *Handler, readiness func() bool) chi.Router {
	router := chi.NewRouter()

	router.Route("/buyers", func(r chi.Router) {
		r.Post("/", handler.PostBuyers)
		r.Get("/{id}", handler.GetBuyer)
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
