package services

import (
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
)

// ProjectSummary is the public card view of a project.
type ProjectSummary struct {
	ID                  uuid.UUID     `json:"id"`
	Title               string        `json:"title"`
	Slug                string        `json:"slug"`
	Description         string        `json:"description"`
	SourceURL           string        `json:"sourceUrl"`
	DemoURL             *string       `json:"demoUrl,omitempty"`
	CoverImage          string        `json:"coverImage,omitempty"`
	Images              []string      `json:"images"`
	Tags                []string      `json:"tags"`
	SeekingContributors bool          `json:"seekingContributors"`
	Author              models.Author `json:"author"`
	LikeCount           int64         `json:"likeCount"`
	CommentCount        int64         `json:"commentCount"`
	CreatedAt           time.Time     `json:"createdAt"`
}

func NewProjectSummary(p *models.Project, e database.Engagement) ProjectSummary {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return ProjectSummary{
		ID:                  p.ID,
		Title:               p.Title,
		Slug:                p.Slug,
		Description:         p.Description,
		SourceURL:           p.SourceURL,
		DemoURL:             p.DemoURL,
		CoverImage:          p.CoverImage(),
		Images:              images,
		Tags:                tags,
		SeekingContributors: p.SeekingContributors,
		Author:              p.User.Author(),
		LikeCount:           e.Likes,
		CommentCount:        e.Comments,
		CreatedAt:           p.CreatedAt,
	}
}

// CommentView is a comment together with its author.
type CommentView struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	Author    models.Author `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
}

func NewCommentView(c *models.Comment) CommentView {
	return CommentView{ID: c.ID, Content: c.Content, Author: c.User.Author(), CreatedAt: c.CreatedAt}
}

// ProjectDetail is everything the project page shows.
type ProjectDetail struct {
	ProjectSummary
	Content       string        `json:"content"`
	ContentHTML   string        `json:"contentHtml"`
	Comments      []CommentView `json:"comments"`
	LikedByViewer bool          `json:"likedByViewer"`
	IsOwner       bool          `json:"isOwner"`
}

// ProjectPage is one page of the feed.
type ProjectPage struct {
	Projects    []ProjectSummary `json:"projects"`
	Total       int64            `json:"total"`
	Page        int              `json:"page"`
	Size        int              `json:"size"`
	TotalPages  int              `json:"totalPages"`
	HasNextPage bool             `json:"hasNextPage"`
}

// PublicProfile is the part of a user anyone may see.
type PublicProfile struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Username  string           `json:"username"`
	Bio       string           `json:"bio"`
	Skills    []string         `json:"skills"`
	AvatarURL string           `json:"avatarUrl"`
	CreatedAt time.Time        `json:"createdAt"`
	Projects  []ProjectSummary `json:"projects"`
}
