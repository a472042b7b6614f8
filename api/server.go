package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/auth"
	"github.com/Hassan1910/Community-Collaboration-Platforms/config"
	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators the HTTP layer adapts.
type Dependencies struct {
	DB           database.Database
	Auth         auth.Provider
	Identity     *services.IdentityResolver
	Projects     *services.ProjectService
	Interactions *services.InteractionService
	Highlights   *services.HighlightService
	Profiles     *services.ProfileService

	// UploadDir is served under UploadURLPrefix when set.
	UploadDir       string
	UploadURLPrefix string
}

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, deps Dependencies) (Server, error) {
	if deps.Auth == nil {
		return Server{}, fmt.Errorf("an auth provider is required")
	}

	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps,
		withAcceptedOrigins(config.GetList(c, "ACCEPTED_ORIGINS")),
		withStartupTime(startupTime),
	)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  config.GetSeconds(c, "READ_TIMEOUT_SECONDS", 180),  // Timeout for reading the entire request
		WriteTimeout: config.GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180), // Timeout for writing the response
		IdleTimeout:  config.GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180),  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	acceptedOrigins []string
	startupTime     time.Time
}

func withAcceptedOrigins(origins []string) func(*router) {
	return func(r *router) {
		r.acceptedOrigins = origins
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	router := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&router)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(corsMiddleware(router.acceptedOrigins))
	chiRouter.Use(HTTPLoggingMiddleware)

	handlers := initializeHandlers(deps, router.startupTime)
	authMiddleware := newAuthMiddleware(deps.Auth)

	setupRoutes(chiRouter, handlers, authMiddleware)

	if deps.UploadDir != "" {
		serveUploads(chiRouter, deps.UploadURLPrefix, deps.UploadDir)
	}

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
