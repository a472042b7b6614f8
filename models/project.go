package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project represents a shipped side project
type Project struct {
	ID                  uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title               string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Slug                string                      `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_projects_slug"`
	Description         string                      `json:"description" db:"description" gorm:"type:text;not null"`
	Content             string                      `json:"content" db:"content" gorm:"type:text;not null"`
	SourceURL           string                      `json:"sourceUrl" db:"source_url" gorm:"type:text;not null"`
	DemoURL             *string                     `json:"demoUrl,omitempty" db:"demo_url" gorm:"type:text"`
	Images              datatypes.JSONSlice[string] `json:"images" db:"images"`
	Tags                datatypes.JSONSlice[string] `json:"tags" db:"tags"`
	SeekingContributors bool                        `json:"seekingContributors" db:"seeking_contributors" gorm:"not null;default:false"`
	UserID              uuid.UUID                   `json:"userId" db:"user_id" gorm:"type:uuid;not null;index:idx_projects_user_id"`
	CreatedAt           time.Time                   `json:"createdAt" db:"created_at" gorm:"not null;index:idx_projects_created_at"`
	UpdatedAt           time.Time                   `json:"updatedAt" db:"updated_at" gorm:"not null"`

	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Comments []Comment `json:"-" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Images == nil {
		p.Images = datatypes.JSONSlice[string]{}
	}
	if p.Tags == nil {
		p.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

// CoverImage returns the first image, or "" when the project has none.
func (p *Project) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p *Project) IsOwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}
