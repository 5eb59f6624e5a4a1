package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media type choices for Gallery entries.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
	MediaTypeAudio = "audio"
	MediaTypeOther = "other"
)

// Gallery is one uploaded media item. The id is client-generatable: when an
// uploaded file name parses as a UUID it is reused as the identity, which
// makes offline resubmission idempotent.
type Gallery struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Type      string    `gorm:"size:15;not null;default:image" json:"type"`
	Media     string    `gorm:"size:512" json:"media"` // stored reference path/URL
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns an identity when one was not supplied.
func (g *Gallery) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name for Gallery
func (Gallery) TableName() string {
	return "galleries"
}
