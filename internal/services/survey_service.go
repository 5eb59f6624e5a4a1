package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/geometry"
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SurveyService owns the happening-survey mutations: validation, partial
// update semantics, attachment handling and orchestration of history
// snapshots and the moderation dispatcher. Each mutation's writes (record,
// attachments, history entry) run in a single transaction.
type SurveyService struct {
	DB         *gorm.DB
	Media      MediaStore
	Dispatcher *Dispatcher
}

// CreateSurveyInput carries the createHappeningSurvey payload. ID and
// CreatedAt may be supplied by offline clients syncing records created
// earlier.
type CreateSurveyInput struct {
	ID          *uuid.UUID
	CategoryID  *uint64
	ProjectID   *uint64
	Title       *string
	Description *string
	Sentiment   *string
	Improvement *string
	Location    *geometry.Geometry
	Boundary    *geometry.Geometry
	IsPublic    *bool
	IsTest      *bool
	DataDump    []byte
	CreatedAt   *time.Time
	Attachments []Upload
	Audio       *Upload
}

// UpdateSurveyInput is the sparse field map shared by update and edit.
// Nil pointers mean "not provided". AttachmentLinks, when non-nil,
// replaces the current attachment association set.
type UpdateSurveyInput struct {
	CategoryID      *uint64
	ProjectID       *uint64
	Title           *string
	Description     *string
	Sentiment       *string
	Improvement     *string
	Location        *geometry.Geometry
	Boundary        *geometry.Geometry
	Status          *string
	IsPublic        *bool
	IsTest          *bool
	DataDump        []byte
	ModifiedAt      *time.Time
	AttachmentLinks *[]uuid.UUID
	Attachments     []Upload
}

// FieldsProvided names the record fields present in the payload. Used by
// the authorization predicate's moderation-only rule.
func (in *UpdateSurveyInput) FieldsProvided() []string {
	var fields []string
	add := func(name string, present bool) {
		if present {
			fields = append(fields, name)
		}
	}
	add("category_id", in.CategoryID != nil)
	add("project_id", in.ProjectID != nil)
	add("title", in.Title != nil)
	add("description", in.Description != nil)
	add("sentiment", in.Sentiment != nil)
	add("improvement", in.Improvement != nil)
	add("location", in.Location != nil)
	add("boundary", in.Boundary != nil)
	add("status", in.Status != nil)
	add("is_public", in.IsPublic != nil)
	add("is_test", in.IsTest != nil)
	add("data_dump", in.DataDump != nil)
	add("attachment_link", in.AttachmentLinks != nil)
	add("attachment", len(in.Attachments) > 0)
	return fields
}

// CanEditHappeningSurvey is the edit authorization predicate: project
// admins, staff, superusers and the original creator may edit freely; a
// holder of the moderation permission may edit only when the payload is
// exactly the single status field.
func CanEditHappeningSurvey(db *gorm.DB, actor *types.Actor, survey *models.HappeningSurvey, providedFields []string) bool {
	if actor == nil {
		return false
	}
	if actor.IsStaff || actor.IsSuperuser {
		return true
	}
	if survey.CreatedByID != nil && *survey.CreatedByID == actor.ID {
		return true
	}
	if survey.ProjectID != nil {
		var count int64
		db.Model(&models.ProjectUser{}).
			Where("user_id = ? AND project_id = ? AND is_admin = ?", actor.ID, *survey.ProjectID, true).
			Count(&count)
		if count > 0 {
			return true
		}
	}
	if actor.CanModerateSurvey {
		return len(providedFields) == 1 && providedFields[0] == "status"
	}
	return false
}

// Create persists a new happening survey with its attachments and initial
// history entry in one transaction. Anonymous submissions leave created_by
// unset regardless of the authenticated actor. Any internal failure rolls
// back everything and collapses to ErrCreateFailed.
func (s *SurveyService) Create(actor *types.Actor, anonymous bool, in CreateSurveyInput) (*models.HappeningSurvey, error) {
	if actor == nil && !anonymous {
		return nil, ErrNotAuthenticated
	}

	survey := &models.HappeningSurvey{
		CategoryID:  in.CategoryID,
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Sentiment:   in.Sentiment,
		Improvement: in.Improvement,
		Location:    in.Location,
		Boundary:    in.Boundary,
		Status:      models.StatusPending,
		IsPublic:    true,
	}
	if in.ID != nil {
		survey.ID = *in.ID
	}
	if in.IsPublic != nil {
		survey.IsPublic = *in.IsPublic
	}
	if in.IsTest != nil {
		survey.IsTest = *in.IsTest
	}
	if in.DataDump != nil {
		survey.DataDump = models.JSON{JSON: datatypes.JSON(in.DataDump)}
	}
	if !anonymous && actor != nil {
		survey.CreatedByID = &actor.ID
	}
	if in.CreatedAt != nil {
		survey.CreatedAt = *in.CreatedAt
	}

	if fieldErrs := survey.Validate(); fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if in.Audio != nil {
			audio, err := s.createGallery(tx, *in.Audio, models.MediaTypeAudio)
			if err != nil {
				return err
			}
			survey.AudioID = &audio.ID
		}
		if err := tx.Create(survey).Error; err != nil {
			return err
		}
		for _, upload := range in.Attachments {
			gallery, err := s.createGallery(tx, upload, models.MediaTypeImage)
			if err != nil {
				return err
			}
			if err := tx.Model(survey).Association("Attachments").Append(gallery); err != nil {
				return err
			}
		}
		return SnapshotSurvey(tx, survey, survey.CreatedByID)
	})
	if err != nil {
		log.Printf("create happening survey failed: %v", err)
		return nil, ErrCreateFailed
	}

	if s.Dispatcher != nil {
		s.Dispatcher.SurveySaved(survey, true, nil)
	}
	return survey, nil
}

// Update applies a sparse field map to an existing survey. The record
// must exist (not-found is raised before authorization) and the actor must
// pass CanEditHappeningSurvey. Validation failures return a structured
// *ValidationError without persisting anything.
func (s *SurveyService) Update(actor *types.Actor, id uuid.UUID, in UpdateSurveyInput) (*models.HappeningSurvey, error) {
	return s.mutate(actor, id, in)
}

// Edit is the partial-update twin of Update; both accept sparse payloads
// and share validation, attachment and history semantics.
func (s *SurveyService) Edit(actor *types.Actor, id uuid.UUID, in UpdateSurveyInput) (*models.HappeningSurvey, error) {
	return s.mutate(actor, id, in)
}

func (s *SurveyService) mutate(actor *types.Actor, id uuid.UUID, in UpdateSurveyInput) (*models.HappeningSurvey, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	var survey models.HappeningSurvey
	// Existence is checked before authorization; see the survey docs for
	// why this ordering is kept.
	if err := s.DB.First(&survey, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !CanEditHappeningSurvey(s.DB, actor, &survey, in.FieldsProvided()) {
		return nil, ErrPermissionDenied
	}

	old := survey

	if in.CategoryID != nil {
		survey.CategoryID = in.CategoryID
	}
	if in.ProjectID != nil {
		survey.ProjectID = in.ProjectID
	}
	if in.Title != nil {
		survey.Title = in.Title
	}
	if in.Description != nil {
		survey.Description = in.Description
	}
	if in.Sentiment != nil {
		survey.Sentiment = in.Sentiment
	}
	if in.Improvement != nil {
		survey.Improvement = in.Improvement
	}
	if in.Location != nil {
		survey.Location = in.Location
	}
	if in.Boundary != nil {
		survey.Boundary = in.Boundary
	}
	if in.Status != nil {
		survey.Status = *in.Status
	}
	if in.IsPublic != nil {
		survey.IsPublic = *in.IsPublic
	}
	if in.IsTest != nil {
		survey.IsTest = *in.IsTest
	}
	if in.DataDump != nil {
		survey.DataDump = models.JSON{JSON: datatypes.JSON(in.DataDump)}
	}

	if fieldErrs := survey.Validate(); fieldErrs != nil {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	survey.UpdatedByID = &actor.ID
	if in.ModifiedAt != nil {
		survey.ModifiedAt = *in.ModifiedAt
	} else {
		survey.ModifiedAt = time.Now().UTC()
	}

	changed := diffSurveyFields(&old, &survey)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if in.AttachmentLinks != nil {
			linked := make([]models.Gallery, 0, len(*in.AttachmentLinks))
			if len(*in.AttachmentLinks) > 0 {
				if err := tx.Where("id IN ?", *in.AttachmentLinks).Find(&linked).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&survey).Association("Attachments").Replace(linked); err != nil {
				return err
			}
		}
		for _, upload := range in.Attachments {
			gallery, err := s.createGallery(tx, upload, models.MediaTypeImage)
			if err != nil {
				return err
			}
			if err := tx.Model(&survey).Association("Attachments").Append(gallery); err != nil {
				return err
			}
		}
		if err := tx.Save(&survey).Error; err != nil {
			return err
		}
		return SnapshotSurvey(tx, &survey, &actor.ID)
	})
	if err != nil {
		log.Printf("update happening survey %s failed: %v", id, err)
		return nil, ErrUpdateFailed
	}

	if s.Dispatcher != nil {
		s.Dispatcher.SurveySaved(&survey, false, changed)
	}
	return &survey, nil
}

// Delete hard-deletes a survey. Internal failures are swallowed into the
// returned error without detail; not-found and authorization are raised
// distinctly, mirroring update/edit.
func (s *SurveyService) Delete(actor *types.Actor, id uuid.UUID) error {
	if actor == nil {
		return ErrNotAuthenticated
	}

	var survey models.HappeningSurvey
	if err := s.DB.First(&survey, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		log.Printf("delete happening survey %s failed: %v", id, err)
		return errors.New("failed to delete happening survey")
	}

	if !CanEditHappeningSurvey(s.DB, actor, &survey, nil) {
		return ErrPermissionDenied
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&survey).Association("Attachments").Clear(); err != nil {
			return err
		}
		return tx.Delete(&survey).Error
	})
	if err != nil {
		log.Printf("delete happening survey %s failed: %v", id, err)
		return errors.New("failed to delete happening survey")
	}
	return nil
}

// createGallery wraps one upload into a Gallery row; file names that parse
// as UUIDs are reused as the row identity so resubmissions are idempotent.
func (s *SurveyService) createGallery(tx *gorm.DB, upload Upload, mediaType string) (*models.Gallery, error) {
	gallery := models.Gallery{
		Title: upload.Name,
		Type:  mediaType,
	}
	if parsed, err := uuid.Parse(upload.Name); err == nil {
		gallery.ID = parsed
	}
	if s.Media != nil && upload.Content != nil {
		stored, err := s.Media.Store(upload.Name, upload.Content)
		if err != nil {
			return nil, err
		}
		gallery.Media = stored
	}
	// Idempotent resubmission: an existing row with the same id is reused.
	if gallery.ID != uuid.Nil {
		var existing models.Gallery
		err := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)}).
			First(&existing, "id = ?", gallery.ID).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if err := tx.Create(&gallery).Error; err != nil {
		return nil, err
	}
	return &gallery, nil
}
