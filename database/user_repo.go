package database

import (
	"context"
	"errors"

	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *UserRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByID returns a user by its ID, or nil when absent
func (r *UserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByExternalID looks the user up on the primary so a row created moments ago is visible
func (r *UserRepo) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("external_id = ?", externalID))
}

// FindByUsername returns a user by username, or nil when absent
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(r.db.WithContext(ctx).Where("username = ?", username))
}

// UsernameTaken reports whether another user already holds username
func (r *UserRepo) UsernameTaken(ctx context.Context, username string, exceptID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).
		Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}

// Add inserts a new user into the database
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves the mutable profile columns of an existing user
func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Model(user).
		Select("name", "username", "bio", "skills", "avatar_url", "email", "updated_at").
		Updates(user).Error
}

func (r *UserRepo) findOne(tx *gorm.DB) (*models.User, error) {
	var user models.User
	err := tx.First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
