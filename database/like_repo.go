package database

import (
	"context"
	"errors"

	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type LikeRepo struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) *LikeRepo {
	return &LikeRepo{db}
}

// Find returns the like userID left on projectID, or nil when there is none.
// It reads from the primary since the caller decides a write from the result.
func (r *LikeRepo) Find(ctx context.Context, userID, projectID uuid.UUID) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &like, nil
}

// Add inserts a like. A concurrent insert of the same pair surfaces as a duplicate key error.
func (r *LikeRepo) Add(ctx context.Context, like *models.Like) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error
}

// DeleteByPair removes the like for (userID, projectID) and reports how many rows went away
func (r *LikeRepo) DeleteByPair(ctx context.Context, userID, projectID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&models.Like{})
	return result.RowsAffected, result.Error
}

// CountByProject returns the number of likes on projectID
func (r *LikeRepo) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Model(&models.Like{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// LikedProjects returns the subset of projectIDs that userID has liked
func (r *LikeRepo) LikedProjects(ctx context.Context, userID uuid.UUID, projectIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	liked := make(map[uuid.UUID]bool)
	if len(projectIDs) == 0 {
		return liked, nil
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND project_id IN ?", userID, projectIDs).
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
