package api

import (
	"encoding/json"
	"strings"

	"github.com/Hassan1910/Community-Collaboration-Platforms/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	healthHandler      healthHandler
	projectHandler     projectHandler
	interactionHandler interactionHandler
	userHandler        userHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string            `json:"error" example:"please check your inputs"`
	Status  string            `json:"status" example:"error"`
	Field   string            `json:"field,omitempty" example:"imageFile"`
	Details string            `json:"details,omitempty" example:"Additional error details"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// tagList accepts tags either as a comma separated string or as a JSON array
type tagList string

func (t *tagList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = tagList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*t = tagList(strings.Join(list, ","))
	return nil
}

// projectRequest is the JSON body of create and update
type projectRequest struct {
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Content             string  `json:"content"`
	SourceURL           string  `json:"sourceUrl"`
	DemoURL             string  `json:"demoUrl"`
	ImageURL            string  `json:"imageUrl"`
	Tags                tagList `json:"tags"`
	SeekingContributors bool    `json:"seekingContributors"`
}

func (p projectRequest) input() services.ProjectInput {
	return services.ProjectInput{
		Title:               p.Title,
		Description:         p.Description,
		Content:             p.Content,
		SourceURL:           p.SourceURL,
		DemoURL:             p.DemoURL,
		ImageURL:            p.ImageURL,
		Tags:                string(p.Tags),
		SeekingContributors: p.SeekingContributors,
	}
}

type likeRequest struct {
	Liked *bool `json:"liked"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// profileRequest accepts skills as a string or an array, like project tags
type profileRequest struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Bio      string  `json:"bio"`
	Skills   tagList `json:"skills"`
}

// HealthResponse reports liveness and database reachability
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}
