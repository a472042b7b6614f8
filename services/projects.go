package services

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps the feed offset within 32 bits.
	MaxPage = math.MaxInt32 / MaxPageSize
)

type ProjectService struct {
	projects   *database.ProjectRepo
	likes      *database.LikeRepo
	comments   *database.CommentRepo
	uploader   *Uploader
	highlights *HighlightService
	sourceHost string
	logger     zerolog.Logger
	now        func() time.Time
}

func NewProjectService(db database.Database, uploader *Uploader, highlights *HighlightService, sourceHost string) *ProjectService {
	return &ProjectService{
		projects:   db.ProjectRepo(),
		likes:      db.LikeRepo(),
		comments:   db.CommentRepo(),
		uploader:   uploader,
		highlights: highlights,
		sourceHost: sourceHost,
		logger:     log.With().Str("service", "projects").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create validates in, stores the optional image and inserts the project under a unique slug.
func (s *ProjectService) Create(ctx context.Context, owner *models.User, in ProjectInput, image *ImageFile) (*models.Project, error) {
	if owner == nil {
		return nil, errs.NewUnauthenticatedError()
	}
	if fields := in.Validate(s.sourceHost); fields != nil {
		return nil, errs.NewValidationError(fields)
	}
	in = in.normalized()

	uploaded, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &models.Project{
		Title:               in.Title,
		Description:         in.Description,
		Content:             in.Content,
		SourceURL:           in.SourceURL,
		DemoURL:             optional(in.DemoURL),
		Images:              datatypes.JSONSlice[string]{},
		Tags:                datatypes.JSONSlice[string](ParseTags(in.Tags)),
		SeekingContributors: in.SeekingContributors,
		UserID:              owner.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	switch {
	case uploaded != "":
		project.Images = datatypes.JSONSlice[string]{uploaded}
	case in.ImageURL != "":
		project.Images = datatypes.JSONSlice[string]{in.ImageURL}
	}

	err = s.writeWithSlug(ctx, project, Slugify(in.Title), s.projects.Add)
	if err != nil {
		s.uploader.Remove(ctx, uploaded)
		return nil, err
	}

	project.User = owner
	s.highlights.Invalidate(ctx)
	s.logger.Info().Str("projectId", project.ID.String()).Str("slug", project.Slug).Msg("project created")
	return project, nil
}

// Update replaces the editable fields of a project owned by owner. The slug is only
// regenerated when the title changes, and the images are kept unless a new one is given.
func (s *ProjectService) Update(ctx context.Context, owner *models.User, projectID uuid.UUID, in ProjectInput, image *ImageFile) (*models.Project, error) {
	if owner == nil {
		return nil, errs.NewUnauthenticatedError()
	}
	project, err := s.ownedProject(ctx, owner, projectID)
	if err != nil {
		return nil, err
	}
	if fields := in.Validate(s.sourceHost); fields != nil {
		return nil, errs.NewValidationError(fields)
	}
	in = in.normalized()

	uploaded, err := s.storeImage(ctx, image)
	if err != nil {
		return nil, err
	}

	previousImages := slices.Clone([]string(project.Images))
	titleChanged := project.Title != in.Title

	project.Title = in.Title
	project.Description = in.Description
	project.Content = in.Content
	project.SourceURL = in.SourceURL
	project.DemoURL = optional(in.DemoURL)
	project.Tags = datatypes.JSONSlice[string](ParseTags(in.Tags))
	project.SeekingContributors = in.SeekingContributors
	project.UpdatedAt = s.now()
	switch {
	case uploaded != "":
		project.Images = datatypes.JSONSlice[string]{uploaded}
	case in.ImageURL != "" && in.ImageURL != project.CoverImage():
		project.Images = datatypes.JSONSlice[string]{in.ImageURL}
	}

	if titleChanged {
		err = s.writeWithSlug(ctx, project, Slugify(in.Title), s.projects.Update)
	} else if err = s.projects.Update(ctx, project); err != nil {
		err = errs.NewDatabaseError("update", "project", err)
	}
	if err != nil {
		s.uploader.Remove(ctx, uploaded)
		return nil, err
	}

	for _, old := range previousImages {
		if !slices.Contains(project.Images, old) {
			s.uploader.Remove(ctx, old)
		}
	}
	s.highlights.Invalidate(ctx)
	return project, nil
}

// Delete removes a project owned by owner together with its likes and comments, then
// deletes its stored images. Image removal failures are only logged.
func (s *ProjectService) Delete(ctx context.Context, owner *models.User, projectID uuid.UUID) error {
	if owner == nil {
		return errs.NewUnauthenticatedError()
	}
	project, err := s.ownedProject(ctx, owner, projectID)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, project.ID); err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}

	for _, image := range project.Images {
		s.uploader.Remove(ctx, image)
	}
	s.highlights.Invalidate(ctx)
	s.logger.Info().Str("projectId", project.ID.String()).Msg("project deleted")
	return nil
}

// GetBySlug loads the project page. viewer may be nil for anonymous visitors.
func (s *ProjectService) GetBySlug(ctx context.Context, slug string, viewer *models.User) (*ProjectDetail, error) {
	project, err := s.projects.FindBySlug(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}

	engagement, err := s.projects.Engagement(ctx, []uuid.UUID{project.ID})
	if err != nil {
		return nil, errs.NewDatabaseError("count", "engagement", err)
	}
	comments, err := s.comments.FindByProject(ctx, project.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}

	detail := &ProjectDetail{
		ProjectSummary: NewProjectSummary(project, engagement[project.ID]),
		Content:        project.Content,
		ContentHTML:    RenderMarkdown(project.Content),
		Comments:       make([]CommentView, 0, len(comments)),
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, NewCommentView(c))
	}

	if viewer != nil {
		detail.IsOwner = project.IsOwnedBy(viewer.ID)
		like, err := s.likes.Find(ctx, viewer.ID, project.ID)
		if err != nil {
			return nil, errs.NewDatabaseError("find", "like", err)
		}
		detail.LikedByViewer = like != nil
	}
	return detail, nil
}

// ListRecent returns one page of the feed, newest first.
func (s *ProjectService) ListRecent(ctx context.Context, page, size int) (*ProjectPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	projects, total, err := s.projects.FindRecent(ctx, (page-1)*size, size)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	summaries, err := s.summarize(ctx, projects)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &ProjectPage{
		Projects:    summaries,
		Total:       total,
		Page:        page,
		Size:        size,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
	}, nil
}

// ListByUser returns every project of user, newest first.
func (s *ProjectService) ListByUser(ctx context.Context, user *models.User) ([]ProjectSummary, error) {
	projects, err := s.projects.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}
	for _, p := range projects {
		p.User = user
	}
	return s.summarize(ctx, projects)
}

func (s *ProjectService) summarize(ctx context.Context, projects []*models.Project) ([]ProjectSummary, error) {
	engagement, err := s.projects.Engagement(ctx, projectIDs(projects))
	if err != nil {
		return nil, errs.NewDatabaseError("count", "engagement", err)
	}
	summaries := make([]ProjectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, NewProjectSummary(p, engagement[p.ID]))
	}
	return summaries, nil
}

func (s *ProjectService) ownedProject(ctx context.Context, owner *models.User, projectID uuid.UUID) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	if project == nil {
		return nil, errs.NewNotFound("project")
	}
	if !project.IsOwnedBy(owner.ID) {
		return nil, errs.NewForbiddenError("only the owner can change this project")
	}
	return project, nil
}

func (s *ProjectService) storeImage(ctx context.Context, image *ImageFile) (string, error) {
	if image == nil {
		return "", nil
	}
	return s.uploader.StoreImage(ctx, *image)
}

// writeWithSlug assigns a free slug derived from base and runs write, retrying with a fresh
// candidate when the unique index reports a collision another request won.
func (s *ProjectService) writeWithSlug(ctx context.Context, project *models.Project, base string, write func(context.Context, *models.Project) error) error {
	exists := func(ctx context.Context, slug string) (bool, error) {
		return s.projects.SlugExists(ctx, slug, project.ID)
	}

	for attempt := 0; attempt <= maxSlugAttempts; attempt++ {
		slug, next, err := uniqueSlug(ctx, base, attempt, exists)
		if err != nil {
			return errs.NewDatabaseError("check", "slug", err)
		}
		project.Slug = slug

		err = write(ctx, project)
		if err == nil {
			return nil
		}
		if !errs.IsDuplicateKey(err) {
			return errs.NewDatabaseError("save", "project", err)
		}
		s.logger.Debug().Str("slug", slug).Msg("slug taken at write time, retrying")
		attempt = next
	}
	return errs.NewConflictError("could not allocate a unique slug")
}

func projectIDs(projects []*models.Project) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}
	return ids
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
