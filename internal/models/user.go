package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User mirrors the account issued by the external auth provider. Only the
// flags the survey pipeline consults are kept here; registration, OTP and
// session issuance live outside this service.
type User struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	DisplayName string    `gorm:"size:255" json:"displayName"`
	IsStaff     bool      `gorm:"not null;default:false" json:"-"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"-"`
	// CanModerateSurvey grants accept/reject capability only: an edit by a
	// holder must consist of exactly the status field.
	CanModerateSurvey bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Project groups surveys under an organization-run initiative.
type Project struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CreatedByID *uuid.UUID `gorm:"type:char(36)" json:"createdById"`
	UpdatedByID *uuid.UUID `gorm:"type:char(36)" json:"updatedById"`
}

// ProjectUser is the membership row; IsAdmin marks project admins, who may
// edit any survey belonging to the project.
type ProjectUser struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ProjectID uint64    `gorm:"not null;index:idx_project_user,unique"`
	UserID    uuid.UUID `gorm:"type:char(36);not null;index:idx_project_user,unique"`
	IsAdmin   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns an identity when one was not supplied.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Project
func (Project) TableName() string {
	return "projects"
}

// TableName overrides the table name for ProjectUser
func (ProjectUser) TableName() string {
	return "project_users"
}
