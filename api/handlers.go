package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBodySize = 1 << 20

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	viewers := viewerResolver{identity: deps.Identity}
	return &routeHandlers{
		healthHandler:      newHealthHandler(deps.DB, startupTime),
		projectHandler:     newProjectHandler(deps.Projects, deps.Highlights, viewers),
		interactionHandler: newInteractionHandler(deps.Interactions, viewers),
		userHandler:        newUserHandler(deps.Profiles),
	}
}

// viewerResolver turns the request identity into the acting user
type viewerResolver struct {
	identity *services.IdentityResolver
}

// actingUser resolves the signed-in user, provisioning it on first contact
func (v viewerResolver) actingUser(r *http.Request) (*models.User, error) {
	return v.identity.Resolve(r.Context(), ctxGetIdentity(r.Context()))
}

// viewer returns the signed-in user if there is one, without creating it
func (v viewerResolver) viewer(r *http.Request) (*models.User, error) {
	return v.identity.Lookup(r.Context(), ctxGetIdentity(r.Context()))
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewBadRequestError("invalid " + name)
	}
	return id, nil
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, payloadType string, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewMalformedPayloadError(payloadType, err)
	}
	return nil
}
