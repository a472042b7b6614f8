package api

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// room for the form fields around a maximum size image
	maxProjectFormSize = services.MaxImageSize + 1<<20
	multipartMemory    = 8 << 20
)

type projectHandler struct {
	responder  Responder
	logger     zerolog.Logger
	projects   *services.ProjectService
	highlights *services.HighlightService
	viewers    viewerResolver
}

func newProjectHandler(projects *services.ProjectService, highlights *services.HighlightService, viewers viewerResolver) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		projects:   projects,
		highlights: highlights,
		viewers:    viewers,
	}
}

// listProjects returns the feed, newest first
// @Summary List projects
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} services.ProjectPage
// @Failure 500 {object} ErrorResponse
// @Router /projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		size, _ := strconv.Atoi(r.URL.Query().Get("size"))

		result, err := h.projects.ListRecent(r.Context(), page, size)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, result)
	}
}

// getHighlights returns the ten most engaging projects of the past week
// @Summary Weekly highlights
// @Tags Projects
// @Produce json
// @Success 200 {array} services.Highlight
// @Failure 500 {object} ErrorResponse
// @Router /projects/highlights [get]
func (h projectHandler) getHighlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.highlights.WeeklyHighlights(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, entries)
	}
}

// getProject returns the project page by slug
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param slug path string true "Project slug"
// @Success 200 {object} services.ProjectDetail
// @Failure 404 {object} ErrorResponse
// @Router /projects/{slug} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, err := h.viewers.viewer(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		detail, err := h.projects.GetBySlug(r.Context(), chi.URLParam(r, "slug"), viewer)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, detail)
	}
}

// createProject ships a new project
// @Summary Create project
// @Description Accepts multipart/form-data (with an optional imageFile) or JSON
// @Tags Projects
// @Accept multipart/form-data,json
// @Produce json
// @Success 201 {object} services.ProjectDetail
// @Failure 400 {object} ErrorResponse "Validation errors keyed by field"
// @Failure 401 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.viewers.actingUser(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		in, image, err := h.readProjectForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), user, in, image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeDetail(w, r, project, user, http.StatusCreated)
	}
}

// updateProject edits a project owned by the caller
// @Summary Update project
// @Tags Projects
// @Accept multipart/form-data,json
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} services.ProjectDetail
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
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

		in, image, err := h.readProjectForm(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Update(r.Context(), user, projectID, in, image)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.writeDetail(w, r, project, user, http.StatusOK)
	}
}

// deleteProject removes a project owned by the caller
// @Summary Delete project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
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

		if err := h.projects.Delete(r.Context(), user, projectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteSuccess(w, "project deleted successfully")
	}
}

func (h projectHandler) writeDetail(w http.ResponseWriter, r *http.Request, project *models.Project, user *models.User, status int) {
	detail, err := h.projects.GetBySlug(r.Context(), project.Slug, user)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSONStatus(w, status, detail)
}

// readProjectForm parses either a multipart form or a JSON body
func (h projectHandler) readProjectForm(w http.ResponseWriter, r *http.Request) (services.ProjectInput, *services.ImageFile, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var req projectRequest
		if err := decodeJSON(w, r, "project", &req); err != nil {
			return services.ProjectInput{}, nil, err
		}
		return req.input(), nil, nil

	case "multipart/form-data", "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxProjectFormSize)
		if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return services.ProjectInput{}, nil, errs.NewFileTooLargeError(services.MaxImageSize)
			}
			return services.ProjectInput{}, nil, errs.NewMalformedPayloadError("form", err)
		}

		in := services.ProjectInput{
			Title:               r.FormValue("title"),
			Description:         r.FormValue("description"),
			Content:             r.FormValue("content"),
			SourceURL:           r.FormValue("sourceUrl"),
			DemoURL:             r.FormValue("demoUrl"),
			ImageURL:            r.FormValue("imageUrl"),
			Tags:                r.FormValue("tags"),
			SeekingContributors: services.CoerceBool(r.FormValue("seekingContributors")),
		}

		image, err := formImage(r)
		if err != nil {
			return services.ProjectInput{}, nil, err
		}
		return in, image, nil

	default:
		return services.ProjectInput{}, nil, errs.NewInvalidContentTypeError(mediaType)
	}
}

// formImage returns the uploaded imageFile, or nil when the field was left empty
func formImage(r *http.Request) (*services.ImageFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File["imageFile"]
	if len(headers) == 0 || (headers[0].Filename == "" && headers[0].Size == 0) {
		return nil, nil
	}
	header := headers[0]

	file, err := header.Open()
	if err != nil {
		return nil, errs.NewUploadWriteError(err)
	}
	return &services.ImageFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        closingReader{file},
	}, nil
}

// closingReader closes the multipart file once it has been read to the end
type closingReader struct {
	multipart.File
}

func (c closingReader) Read(p []byte) (int, error) {
	n, err := c.File.Read(p)
	if err != nil {
		c.File.Close()
	}
	return n, err
}
