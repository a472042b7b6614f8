package database

import (
	"context"
	"errors"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// Engagement holds the like and comment totals of one project
type Engagement struct {
	Likes    int64
	Comments int64
}

// FindByID returns a project by its ID, or nil when absent
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(dbresolver.Write).Preload("User").Where("id = ?", id))
}

// FindBySlug returns a project with its owner, or nil when absent
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return r.findOne(r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug))
}

// SlugExists reports whether a project other than exceptID uses slug
func (r *ProjectRepo) SlugExists(ctx context.Context, slug string, exceptID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Model(&models.Project{}).
		Where("slug = ? AND id <> ?", slug, exceptID).
		Count(&count).Error
	return count > 0, err
}

// FindRecent returns one page of projects, newest first, and the total count
func (r *ProjectRepo) FindRecent(ctx context.Context, offset, limit int) ([]*models.Project, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error
	return projects, total, err
}

// FindCreatedBetween returns at most limit projects created in [since, until), newest first
func (r *ProjectRepo) FindCreatedBetween(ctx context.Context, since, until time.Time, limit int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("created_at >= ? AND created_at < ?", since, until).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// FindByUserID returns every project owned by userID, newest first
func (r *ProjectRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

// Engagement loads like and comment counts for the given projects. Projects without
// interactions are present with zero counts.
func (r *ProjectRepo) Engagement(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Engagement, error) {
	result := make(map[uuid.UUID]Engagement, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var likeCounts, commentCounts []projectCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.countBy(gctx, &models.Like{}, ids, &likeCounts)
	})
	g.Go(func() error {
		return r.countBy(gctx, &models.Comment{}, ids, &commentCounts)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		result[id] = Engagement{}
	}
	for _, c := range likeCounts {
		e := result[c.ProjectID]
		e.Likes = c.Count
		result[c.ProjectID] = e
	}
	for _, c := range commentCounts {
		e := result[c.ProjectID]
		e.Comments = c.Count
		result[c.ProjectID] = e
	}
	return result, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

// Update updates an existing project in the database
// Update writes the editable columns of an existing project. It never inserts: a project
// deleted since it was loaded yields gorm.ErrRecordNotFound.
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", project.ID).
		Select("title", "slug", "description", "content", "source_url", "demo_url",
			"images", "tags", "seeking_contributors", "updated_at").
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a project together with its likes and comments in one transaction
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

type projectCount struct {
	ProjectID uuid.UUID
	Count     int64
}

func (r *ProjectRepo) countBy(ctx context.Context, model interface{}, ids []uuid.UUID, dest *[]projectCount) error {
	return r.db.WithContext(ctx).
		Model(model).
		Select("project_id, COUNT(*) AS count").
		Where("project_id IN ?", ids).
		Group("project_id").
		Scan(dest).Error
}

func (r *ProjectRepo) findOne(tx *gorm.DB) (*models.Project, error) {
	var project models.Project
	err := tx.First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}
