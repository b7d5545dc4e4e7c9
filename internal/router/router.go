// Package router sets up all HTTP routes and middleware chains for the
// Venture Club API. Reads are public; writes and uploads require an admin
// session.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ventureclub/internal/handlers"
	"ventureclub/internal/middleware"
)

// Handlers groups the handler sets mounted by New.
type Handlers struct {
	Collections *handlers.Collections
	Upload      *handlers.Upload
	Auth        *handlers.Auth
	Forms       *handlers.Forms
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter throttles login and public form
// submissions and may be nil.
func New(sessions middleware.SessionGetter, limiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessions))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"success": false, "error": "method not allowed"})
	})

	r.Get("/health", healthHandler)

	throttle := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		throttle = limiter.Middleware
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(throttle).Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/session", h.Auth.Session)
		})

		r.With(throttle).Post("/contact", h.Forms.Contact)
		r.With(throttle).Post("/join", h.Forms.Join)

		r.With(middleware.RequireAuth).Post("/upload", h.Upload.Upload)
		r.With(middleware.RequireAuth).Delete("/upload", h.Upload.Remove)
		r.With(middleware.RequireAuth).Get("/cache-log", h.Collections.CacheLog)

		r.Route("/{collection}", func(r chi.Router) {
			r.Get("/", h.Collections.List)
			r.Get("/{id}", h.Collections.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", h.Collections.Create)
				r.Post("/reorder", h.Collections.Reorder)
				r.Patch("/{id}", h.Collections.Update)
				r.Delete("/{id}", h.Collections.Delete)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
