package database

import (
	"context"

	"github.com/Hassan1910/Community-Collaboration-Platforms/models"
	"gorm.io/gorm"
)

type Database struct {
	db          *gorm.DB
	userRepo    *UserRepo
	projectRepo *ProjectRepo
	likeRepo    *LikeRepo
	commentRepo *CommentRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:          db,
		userRepo:    NewUserRepo(db),
		projectRepo: NewProjectRepo(db),
		likeRepo:    NewLikeRepo(db),
		commentRepo: NewCommentRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) LikeRepo() *LikeRepo {
	return d.likeRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

// AutoMigrate syncs the tables with the models. Used for local development and tests;
// production schemas are managed outside the service.
func (d Database) AutoMigrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(models.AllModels()...)
}

// Ping checks that the primary connection is usable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
