package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/content-governance/app"
	"github.com/upb/content-governance/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Tenant-Slug"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	health := handlers.NewHealthHandler(deps.DB, deps.Logger, app.Version)
	r.Get("/healthz", health.HandleHealthz)
	r.Get("/readyz", health.HandleReadyz)

	// Workflow metadata (no tenant required)
	r.Get("/workflow/states", handlers.HandleWorkflowStates)

	// Content lifecycle (tenant-scoped)
	contentHandler := handlers.NewContentHandler(deps.ContentService, deps.Logger)
	r.Route("/content", func(r chi.Router) {
		r.Use(deps.TenantMiddleware.RequireTenant)
		r.Post("/", contentHandler.HandleCreateContent)
		r.Get("/", contentHandler.HandleListContent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", contentHandler.HandleGetContent)
			r.Get("/allowed", contentHandler.HandleAllowedTransitions)
			r.Post("/transition", contentHandler.HandleTransitionContent)
			r.Get("/events", contentHandler.HandleListEvents)
			r.Get("/provenance", contentHandler.HandleListProvenance)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
