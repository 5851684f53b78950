package handler

import (
	"log"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/suar-net/suar-relay/internal/ratelimit"
	"github.com/suar-net/suar-relay/internal/service"
)

// Dependencies groups everything the router hands to its handlers.
type Dependencies struct {
	ProxyService       HTTPProxyService
	IdentityService    service.IIdentityService
	HistoryService     service.IHistoryService
	CollectionService  service.ICollectionService
	EnvironmentService service.IEnvironmentService
	Store              Pinger
	// Limiter throttles POST /proxy per caller. Nil disables it.
	Limiter        ratelimit.Limiter
	AllowedOrigins []string
	Logger         *log.Logger
}

// SetupRouter creates the main Chi router for the application.
func SetupRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := deps.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
		MaxAge:           300,
	}))

	healthHandler := NewHealthHandler(deps.Store, deps.Logger)
	authMiddleware := NewAuthMiddleware(deps.IdentityService, deps.Logger)
	httpProxyHandler := NewHTTPProxyHandler(deps.ProxyService, deps.Logger)
	historyHandler := NewHistoryHandler(deps.HistoryService, deps.Logger)
	collectionHandler := NewCollectionHandler(deps.CollectionService, deps.Logger)
	environmentHandler := NewEnvironmentHandler(deps.EnvironmentService, deps.Logger)

	r.Get("/health", healthHandler.Check)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Group(func(r chi.Router) {
			if deps.Limiter != nil {
				r.Use(RateLimit(deps.Limiter))
			}
			r.Post("/proxy", httpProxyHandler.ServeHTTP)
		})

		r.Get("/history", historyHandler.List)
		r.Delete("/history/{id}", historyHandler.Delete)

		r.Route("/collections", func(r chi.Router) {
			r.Post("/", collectionHandler.Create)
			r.Get("/", collectionHandler.List)
			r.Delete("/items/{id}", collectionHandler.DeleteItem)
			r.Delete("/{id}", collectionHandler.Delete)
			r.Post("/{id}/items", collectionHandler.AddItem)
			r.Get("/{id}/items", collectionHandler.ListItems)
		})

		r.Post("/env", environmentHandler.Create)
		r.Get("/env", environmentHandler.List)
		r.Delete("/env/{id}", environmentHandler.Delete)
	})

	return r
}
