package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mathviz/internal/auth"
	authmw "github.com/mind-engage/mathviz/internal/auth/middleware"
	"github.com/mind-engage/mathviz/internal/browse"
	"github.com/mind-engage/mathviz/internal/export"
	"github.com/mind-engage/mathviz/internal/rbac"
)

type Deps struct {
	Browse *browse.Service
	Auth   *authmw.AuthService
	// Sink stores exported documents; nil disables /exports and ?save=1.
	Sink *export.Sink

	LocalAuth     bool
	GuestAuth     bool
	SecureCookies bool
	CORSOrigins   []string

	// Ready backs /readyz, typically a DB ping.
	Ready func(ctx context.Context) error
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition", "X-Export-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.LocalAuth {
		r.Post("/auth/login", authmw.LoginHandler(d.Auth))
	}
	if d.GuestAuth {
		r.Post("/auth/guest", auth.GuestLoginHandler(d.Auth, d.SecureCookies))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(d.Auth))

		pr.With(rbac.Require(rbac.PermDatasetView)).Get("/datasets", ListDatasetsHandler(d.Browse))
		pr.Route("/datasets/{variant}", func(vr chi.Router) {
			vr.With(rbac.Require(rbac.PermDatasetReload)).Post("/reload", ReloadDatasetHandler(d.Browse))

			vr.Group(func(view chi.Router) {
				view.Use(rbac.Require(rbac.PermDatasetView))
				view.Get("/facets", FacetsHandler(d.Browse))
				view.Get("/facets/{facet}", FacetValuesHandler(d.Browse))
				view.Get("/scale", ScaleHandler(d.Browse))
				view.Post("/query", QueryHandler(d.Browse))
				view.Get("/records/*", RecordHandler(d.Browse))
			})

			vr.With(rbac.Require(rbac.PermAnnotationCreate)).
				Post("/annotations", AnnotateHandler(d.Browse, d.Sink))
		})

		if d.Sink != nil {
			pr.Route("/exports", func(er chi.Router) { MountExports(er, d.Sink) })
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
