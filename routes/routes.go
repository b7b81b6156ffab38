package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/rbac-dashboard/app"
	"github.com/upb/rbac-dashboard/handlers"
	"github.com/upb/rbac-dashboard/models"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(deps.RateLimiter.Handler)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	auth := deps.AuthMiddleware

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", handlers.HealthCheck())
		r.Post("/login", deps.AuthHandler.HandleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Get("/me", deps.AuthHandler.HandleMe)
			r.Post("/logout", deps.AuthHandler.HandleLogout)

			// Directory listing is admin-only by allow-list
			r.With(auth.RequireAnyRole(models.RoleAdmin)).
				Get("/users", deps.AuthHandler.HandleListUsers)

			// Reads carry their own per-type allow-list inside the handler
			r.Get("/data/{type}", deps.DataHandler.HandleGetData)

			// Updates require at least editor rank; deletes exactly admin
			r.With(auth.RequireMinRole(models.RoleEditor)).
				Put("/data/{type}/{id}", deps.DataHandler.HandleUpdateData)
			r.With(auth.RequireAnyRole(models.RoleAdmin)).
				Delete("/data/{type}/{id}", deps.DataHandler.HandleDeleteData)

			r.With(auth.RequireAnyRole(models.RoleViewer, models.RoleEditor, models.RoleAdmin)).
				Get("/dashboard/stats", deps.DataHandler.HandleStats)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Endpoint not found."}`))
	})

	return r
}
