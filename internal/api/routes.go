package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/discount-generator/internal/auth"
	"github.com/ignite/discount-generator/internal/pkg/httputil"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, health *HealthChecker, authManager *auth.AuthManager, origins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// CORS - allow credentials for auth cookies
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health checks (no auth required)
	r.Get("/health", health.HandleHealth)
	r.Get("/health/live", health.HandleLiveness)
	r.Get("/health/ready", health.HandleReadiness)

	// Auth routes (no auth required)
	if authManager != nil {
		r.Get("/auth/login", authManager.HandleLogin)
		r.Get("/auth/callback", authManager.HandleCallback)
		r.Get("/auth/logout", authManager.HandleLogout)
		r.Get("/auth/user", authManager.HandleUserInfo)
	}

	r.Route("/api", func(r chi.Router) {
		if authManager != nil {
			r.Use(authManager.RequireAuth)
		}

		r.Post("/uploads", h.HandleUpload)
		r.Post("/sample", h.HandleSample)
		r.Post("/source/import", h.HandleImportSource)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleDeleteSession)
			r.Post("/process", h.HandleProcess)
			r.Get("/offers", h.HandleOffers)
			r.Get("/offers/{row}/explain", h.HandleExplain)
			r.Get("/summary", h.HandleSummary)
			r.Get("/segments", h.HandleSegments)
			r.Get("/charts/{name}.png", h.HandleChart)
			r.Get("/export", h.HandleExport)
			r.Post("/export", h.HandlePublish)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httputil.Error(w, http.StatusNotFound, "not found")
	})

	return r
}
