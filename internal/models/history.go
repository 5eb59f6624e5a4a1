package models

import (
	"time"

	"github.com/google/uuid"
)

// HappeningSurveyVersion is one immutable audit snapshot of a survey.
// Entries are append-only: the pipeline never updates or deletes them.
// The serialized data holds every scalar field plus the attachment id set
// as of the snapshot, so a point-in-time view can be rehydrated later.
type HappeningSurveyVersion struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	SurveyID       uuid.UUID `gorm:"type:char(36);not null;index"`
	SerializedData JSON      `gorm:"type:json;not null"`
	Comment        string    `gorm:"size:255;not null"`
	CreatedAt      time.Time
	CreatedByID    *uuid.UUID `gorm:"type:char(36)"`
}

// TableName overrides the table name for HappeningSurveyVersion
func (HappeningSurveyVersion) TableName() string {
	return "happening_survey_versions"
}
