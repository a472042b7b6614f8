package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is free-text feedback left on a project
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Content   string    `json:"content" db:"content" gorm:"type:text;not null"`
	UserID    uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;not null;index:idx_comments_user_id"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;index:idx_comments_project_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Comment) IsOwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}
