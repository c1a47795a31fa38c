package httpapi

import (
	"github.com/go-chi/chi/v5"

	platformhealth "github.com/shestoi/minimarket/platform/health/http"
)

// NewRouter создаёт и настраивает HTTP роутер Merchant Service
func NewRouter(handler *Handler, readiness func() bool) chi.Router {
	router := chi.NewRouter()

	router.Route("/merchants", func(r chi.Router) {
		r.Post("/", handler.PostMerchants)
		r.Get("/{id}", handler.GetMerchant)
	})

	router.Get("/health", platformhealth.Handler(readiness))

	return router
}
