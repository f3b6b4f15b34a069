package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/inkwell-app/inkwell-api/internal/auth"
	"github.com/inkwell-app/inkwell-api/internal/handlers"
	"github.com/inkwell-app/inkwell-api/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultAdminRateLimit()

	// All directory routes require an authenticated admin principal.
	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Use(auth.Middleware(tokenManager))
		r.Use(auth.RequireRole("admin"))

		r.Get("/users", adminHandler.ListUsers)
		r.Get("/users/{id}", adminHandler.GetUser)
		r.Patch("/users/{id}", adminHandler.UpdateUser)
		r.Delete("/users/{id}", adminHandler.DeleteUser)

		r.Get("/stats/system", adminHandler.GetSystemStats)
		r.Get("/stats/users", adminHandler.GetUserStats)

		r.Get("/config", adminHandler.GetSystemConfig)
		r.Patch("/config", adminHandler.UpdateSystemConfig)

		r.Get("/audit", adminHandler.ListAuditEntries)

		r.Post("/backups", adminHandler.CreateBackup)
		r.Get("/backups", adminHandler.ListBackups)
		r.Get("/backups/{id}", adminHandler.GetBackup)
	})
}
