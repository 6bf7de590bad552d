package invoicehttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes registers invoice session endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.docLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/catalog", h.listCatalog)
	r.Get("/payment-methods", h.listPaymentMethods)
	r.Post("/sessions", h.createSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.showSession)
		r.Put("/", h.replaceDraft)
		r.Delete("/", h.deleteSession)
		r.Patch("/fields", h.setField)
		r.Post("/lines", h.addLine)
		r.Patch("/lines/{index}", h.updateLine)
		r.Delete("/lines/{index}", h.removeLine)
		r.Post("/lines/{index}/catalog", h.selectCatalogItem)
		r.Post("/submit", h.submit)
		r.With(limiter).Post("/document", h.document)
	})
}
