package api

import (
	"net/http"

	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type interactionHandler struct {
	responder    Responder
	logger       zerolog.Logger
	interactions *services.InteractionService
	viewers      viewerResolver
}

func newInteractionHandler(interactions *services.InteractionService, viewers viewerResolver) interactionHandler {
	logger := log.With().Str("handlerName", "interactionHandler").Logger()

	return interactionHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		interactions: interactions,
		viewers:      viewers,
	}
}

// toggleLike flips the caller's like on a project
// @Summary Toggle like
// @Tags Interactions
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.LikeState
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID}/like [post]
func (h interactionHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.viewers.actingUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		state, err := h.interactions.ToggleLike(r.Context(), user, projectID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, state)
	}
}

// setLike sets the caller's like to the requested state
// @Summary Set like
// @Tags Interactions
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param body body likeRequest true "Desired state"
// @Success 200 {object} services.LikeState
// @Failure 400 {object} ErrorResponse
// @Router /projects/{projectID}/like [put]
func (h interactionHandler) setLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req likeRequest
		if err := decodeJSON(w, r, "like", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Liked == nil {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("liked"))
			return
		}

		user, err := h.viewers.actingUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		state, err := h.interactions.SetLike(r.Context(), user, projectID, *req.Liked)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, state)
	}
}

// postComment adds a comment to a project
// @Summary Post comment
// @Tags Interactions
// @Accept json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Param body body commentRequest true "Comment"
// @Success 201 {object} services.CommentView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID}/comments [post]
func (h interactionHandler) postComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req commentRequest
		if err := decodeJSON(w, r, "comment", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.viewers.actingUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.interactions.PostComment(r.Context(), user, projectID, req.Content)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, services.NewCommentView(comment))
	}
}

// deleteComment removes a comment written by the caller
// @Summary Delete comment
// @Tags Interactions
// @Produce json
// @Param commentID path string true "Comment ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /comments/{commentID} [delete]
func (h interactionHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := uuidParam(r, "commentID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.viewers.actingUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.interactions.DeleteComment(r.Context(), user, commentID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteSuccess(w, "comment deleted successfully")
	}
}
