package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(h.requireService)

		r.Post("/forms/{formType}/validate-ocr", func(w http.ResponseWriter, r *http.Request) {
			h.ValidateOCR(w, r, chi.URLParam(r, "formType"))
		})
		r.Post("/validate-ocr-data", h.ValidateOCRLegacy)
		r.Post("/transform-exception-record", h.TransformExceptionRecord)
		r.Post("/callback/new-application", h.NewApplicationCallback)

		if h.audit != nil {
			r.Get("/exception-records/{recordId}/transformations", func(w http.ResponseWriter, r *http.Request) {
				h.TransformationHistory(w, r, chi.URLParam(r, "recordId"))
			})
		}
	})

	return r
}
