package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"bizdesk/internal/config"
	"bizdesk/internal/handler"
	"bizdesk/internal/middleware"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Collections   *handler.CollectionHandler
	Views         *handler.ViewHandler
	Notifications *handler.NotificationHandler
	Health        *handler.HealthHandler
	Docs          *handler.DocsHandler
}

func New(cfg *config.Config, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	// The socket lives outside the timeout group: it is long-lived and must
	// be hijackable.
	r.With(middleware.RequireSession).Get("/ws/notifications", h.Notifications.Stream)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Auth.Login)
			auth.With(middleware.RequireSession).Get("/me", h.Auth.Me)
		})

		api.Group(func(private chi.Router) {
			private.Use(middleware.RequireSession)

			private.Get("/collections", h.Collections.List)

			private.Post("/views", h.Views.Open)
			private.Route("/views/{view_id}", func(view chi.Router) {
				view.Get("/", h.Views.Get)
				view.Delete("/", h.Views.Close)
				view.Post("/load", h.Views.Load)
				view.Put("/search", h.Views.Search)
				view.Put("/sort", h.Views.Sort)
				view.Put("/editing", h.Views.BeginEdit)
				view.Delete("/editing", h.Views.CancelEdit)
				view.Post("/records", h.Views.Create)
				view.Get("/records/{id}", h.Views.GetRecord)
				view.Put("/records/{id}", h.Views.Edit)
				view.Delete("/records/{id}", h.Views.Remove)
			})
		})
	})

	return r
}
