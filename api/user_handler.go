package api

import (
	"net/http"

	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	profiles  *services.ProfileService
}

func newUserHandler(profiles *services.ProfileService) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		profiles:  profiles,
	}
}

// getMe returns the caller's own profile
// @Summary Current user
// @Tags Users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /me [get]
func (h userHandler) getMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.profiles.GetProfile(r.Context(), ctxGetIdentity(r.Context()))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// updateMe saves the caller's profile
// @Summary Update current user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body profileRequest true "Profile"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Router /me [put]
func (h userHandler) updateMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileRequest
		if err := decodeJSON(w, r, "profile", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.profiles.UpdateProfile(r.Context(), ctxGetIdentity(r.Context()), services.ProfileInput{
			Name:     req.Name,
			Username: req.Username,
			Bio:      req.Bio,
			Skills:   string(req.Skills),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, user)
	}
}

// getUser returns a public profile by username
// @Summary Public profile
// @Tags Users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} services.PublicProfile
// @Failure 404 {object} ErrorResponse
// @Router /users/{username} [get]
func (h userHandler) getUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := h.profiles.GetPublicProfile(r.Context(), chi.URLParam(r, "username"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, profile)
	}
}
