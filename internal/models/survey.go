package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/geometry"
	"gorm.io/gorm"
)

// Moderation status choices.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Improvement choices.
const (
	ImprovementIncreasing = "increasing"
	ImprovementSame       = "same"
	ImprovementDecreasing = "decreasing"
)

// HappeningSurvey is a community-submitted environmental observation.
//
// Region and ProtectedArea are derived: they are resolved from
// location-or-boundary after creation and after any location change, and
// are never written from mutation input.
type HappeningSurvey struct {
	ID              uuid.UUID          `gorm:"type:char(36);primaryKey" json:"id"`
	CategoryID      *uint64            `gorm:"index" json:"categoryId"`
	Category        *Category          `json:"category,omitempty"`
	ProjectID       *uint64            `gorm:"index" json:"projectId"`
	Project         *Project           `json:"project,omitempty"`
	Title           *string            `gorm:"size:255" json:"title"`
	Description     *string            `gorm:"type:text" json:"description"`
	Sentiment       *string            `gorm:"type:text" json:"sentiment"`
	Improvement     *string            `gorm:"size:11" json:"improvement"`
	Location        *geometry.Geometry `gorm:"type:json" json:"location"`
	Boundary        *geometry.Geometry `gorm:"type:json" json:"boundary"`
	Status          string             `gorm:"size:11;not null;default:pending" json:"status"`
	IsPublic        bool               `gorm:"not null;default:true" json:"isPublic"`
	IsTest          bool               `gorm:"not null;default:false" json:"isTest"`
	DataDump        JSON               `gorm:"type:json" json:"dataDump"`
	RegionID        *uint64            `gorm:"index" json:"regionId"`
	Region          *Region            `json:"region,omitempty"`
	ProtectedAreaID *uint64            `gorm:"index" json:"protectedAreaId"`
	ProtectedArea   *ProtectedArea     `json:"protectedArea,omitempty"`
	AudioID         *uuid.UUID         `gorm:"type:char(36)" json:"audioId"`
	Audio           *Gallery           `gorm:"foreignKey:AudioID" json:"audio,omitempty"`
	Attachments     []Gallery          `gorm:"many2many:happening_survey_attachments;" json:"attachments"`
	CreatedByID     *uuid.UUID         `gorm:"type:char(36);index" json:"createdById"`
	CreatedBy       *User              `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	UpdatedByID     *uuid.UUID         `gorm:"type:char(36)" json:"updatedById"`
	CreatedAt       time.Time          `json:"createdAt"`
	// ModifiedAt is managed by the mutation service, not by the ORM, so
	// offline clients can supply their own timestamps.
	ModifiedAt time.Time `json:"modifiedAt"`
}

// BeforeCreate assigns an identity when one was not supplied; clients may
// generate their own id so offline-created records can sync later.
func (s *HappeningSurvey) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.ModifiedAt.IsZero() {
		s.ModifiedAt = time.Now().UTC()
	}
	return nil
}

// Validate applies schema-level constraints before persistence. Failures
// are reported per field so mutations can return structured errors.
func (s *HappeningSurvey) Validate() map[string][]string {
	errs := make(map[string][]string)
	switch s.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		errs["status"] = append(errs["status"],
			fmt.Sprintf("value %q is not a valid choice", s.Status))
	}
	if s.Improvement != nil {
		switch *s.Improvement {
		case ImprovementIncreasing, ImprovementSame, ImprovementDecreasing:
		default:
			errs["improvement"] = append(errs["improvement"],
				fmt.Sprintf("value %q is not a valid choice", *s.Improvement))
		}
	}
	if s.Title != nil && len(*s.Title) > 255 {
		errs["title"] = append(errs["title"], "ensure this value has at most 255 characters")
	}
	if s.Location != nil && s.Location.Type != "" {
		if _, err := s.Location.BBox(); err != nil {
			errs["location"] = append(errs["location"], err.Error())
		}
	}
	if s.Boundary != nil && s.Boundary.Type != "" {
		if _, err := s.Boundary.BBox(); err != nil {
			errs["boundary"] = append(errs["boundary"], err.Error())
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TableName overrides the table name for HappeningSurvey
func (HappeningSurvey) TableName() string {
	return "happening_surveys"
}
