package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public and authenticated endpoints
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/healthz", handlers.healthHandler.healthCheck())

	// Public routes, personalised when a valid token is present
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.identify)

		r.Get("/projects", handlers.projectHandler.listProjects())
		r.Get("/projects/highlights", handlers.projectHandler.getHighlights())
		r.Get("/projects/{slug}", handlers.projectHandler.getProject())
		r.Get("/users/{username}", handlers.userHandler.getUser())
	})

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Post("/projects", handlers.projectHandler.createProject())
		r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())

		r.Post("/projects/{projectID}/like", handlers.interactionHandler.toggleLike())
		r.Put("/projects/{projectID}/like", handlers.interactionHandler.setLike())
		r.Post("/projects/{projectID}/comments", handlers.interactionHandler.postComment())
		r.Delete("/comments/{commentID}", handlers.interactionHandler.deleteComment())

		r.Get("/me", handlers.userHandler.getMe())
		r.Put("/me", handlers.userHandler.updateMe())
	})
}

// serveUploads exposes locally stored images under prefix
func serveUploads(r chi.Router, prefix, dir string) {
	prefix = "/" + strings.Trim(prefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))

	r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
		// no directory listings
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
