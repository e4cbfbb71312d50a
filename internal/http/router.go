package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/auditcase/internal/http/cases"
	"github.com/MrJamesThe3rd/auditcase/internal/http/export"
	"github.com/MrJamesThe3rd/auditcase/internal/http/templates"
	"github.com/MrJamesThe3rd/auditcase/internal/obs"
)

func New(
	casesV1 *cases.Handler,
	exportV1 *export.Handler,
	templatesV1 *templates.Handler,
	metrics *obs.Metrics,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         600,
	}))
	router.Use(metrics.Instrument)

	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/cases", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			casesV1.Routes(r)
		})

		r.Route("/export", exportV1.Routes)

		r.Route("/templates", templatesV1.Routes)
	})

	return router
}
