package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the internal profile linked to an external identity
type User struct {
	ID         uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	ExternalID string                      `json:"-" db:"external_id" gorm:"type:text;not null;uniqueIndex:idx_users_external_id"`
	Name       string                      `json:"name" db:"name" gorm:"type:text;not null;default:''"`
	Username   string                      `json:"username" db:"username" gorm:"type:text;not null;uniqueIndex:idx_users_username"`
	Email      string                      `json:"email,omitempty" db:"email" gorm:"type:text;not null;default:''"`
	Bio        string                      `json:"bio" db:"bio" gorm:"type:text;not null;default:''"`
	Skills     datatypes.JSONSlice[string] `json:"skills" db:"skills"`
	AvatarURL  string                      `json:"avatarUrl" db:"avatar_url" gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time                   `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt  time.Time                   `json:"updatedAt" db:"updated_at" gorm:"not null"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Skills == nil {
		u.Skills = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Author is the public slice of a user embedded in project and comment responses
type Author struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl"`
}

func (u *User) Author() Author {
	if u == nil {
		return Author{}
	}
	return Author{ID: u.ID, Name: u.Name, Username: u.Username, AvatarURL: u.AvatarURL}
}
