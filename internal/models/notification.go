package models

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind tags a polymorphic notification reference. Notifications
// reference other records with an explicit kind + id pair instead of a
// generic foreign key; resolution goes through a lookup table per kind
// (see services.ResolveEntity).
type EntityKind string

const (
	EntityKindSurvey       EntityKind = "happening_survey"
	EntityKindUser         EntityKind = "user"
	EntityKindProject      EntityKind = "project"
	EntityKindCategory     EntityKind = "category"
	EntityKindOrganization EntityKind = "organization"
)

// Notification is one inbox entry for a recipient.
type Notification struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID uuid.UUID `gorm:"type:char(36);not null;index:idx_notification_recipient_read" json:"recipientId"`
	HasRead     bool      `gorm:"not null;default:false;index:idx_notification_recipient_read" json:"hasRead"`

	ActorKind EntityKind `gorm:"size:50" json:"actorKind"`
	ActorID   string     `gorm:"size:36" json:"actorId"`

	Verb             string    `gorm:"size:100;not null" json:"verb"`
	Description      string    `gorm:"type:text" json:"description"`
	NotificationType string    `gorm:"size:50;not null;default:default" json:"notificationType"`
	Timestamp        time.Time `json:"timestamp"`

	ActionObjectKind EntityKind `gorm:"size:50" json:"actionObjectKind"`
	ActionObjectID   string     `gorm:"size:36" json:"actionObjectId"`

	TargetKind EntityKind `gorm:"size:50" json:"targetKind"`
	TargetID   string     `gorm:"size:36" json:"targetId"`

	CreatedAt time.Time `json:"createdAt"`
}

// CategoryActivityTrigger marks a category whose new surveys should fan
// out alert emails. Read-only from the survey pipeline's perspective.
type CategoryActivityTrigger struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	CategoryID  *uint64 `gorm:"index"`
	Category    *Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CreatedByID *uuid.UUID `gorm:"type:char(36)"`
	UpdatedByID *uuid.UUID `gorm:"type:char(36)"`
}

// ContactEmail is one alert recipient of a CategoryActivityTrigger.
type ContactEmail struct {
	ID                        uint64  `gorm:"primaryKey;autoIncrement"`
	Email                     string  `gorm:"size:254;not null"`
	CategoryActivityTriggerID *uint64 `gorm:"index"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

// TableName overrides the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// TableName overrides the table name for CategoryActivityTrigger
func (CategoryActivityTrigger) TableName() string {
	return "category_activity_triggers"
}

// TableName overrides the table name for ContactEmail
func (ContactEmail) TableName() string {
	return "contact_emails"
}
