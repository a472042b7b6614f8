package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like is a user's approval of a project. The (user, project) pair is unique.
type Like struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	UserID    uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_project"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_project;index:idx_likes_project_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`

	User *User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
