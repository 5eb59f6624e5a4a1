package services

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/geometry"
	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// initialVersionComment labels the snapshot written by Create.
const initialVersionComment = "Initial version."

// SurveySnapshot is the serialized form of one history entry: every scalar
// field of the survey plus the attachment id set at snapshot time.
type SurveySnapshot struct {
	ID              uuid.UUID          `json:"id"`
	CategoryID      *uint64            `json:"categoryId"`
	ProjectID       *uint64            `json:"projectId"`
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	Sentiment       *string            `json:"sentiment"`
	Improvement     *string            `json:"improvement"`
	Location        *geometry.Geometry `json:"location"`
	Boundary        *geometry.Geometry `json:"boundary"`
	Status          string             `json:"status"`
	IsPublic        bool               `json:"isPublic"`
	IsTest          bool               `json:"isTest"`
	DataDump        json.RawMessage    `json:"dataDump,omitempty"`
	RegionID        *uint64            `json:"regionId"`
	ProtectedAreaID *uint64            `json:"protectedAreaId"`
	AudioID         *uuid.UUID         `json:"audioId"`
	AttachmentIDs   []uuid.UUID        `json:"attachmentIds"`
	CreatedByID     *uuid.UUID         `json:"createdById"`
	UpdatedByID     *uuid.UUID         `json:"updatedById"`
	CreatedAt       time.Time          `json:"createdAt"`
	ModifiedAt      time.Time          `json:"modifiedAt"`
}

// SurveyView is a rehydrated point-in-time read model of a survey,
// including the attachment rows that were associated when the snapshot was
// taken (not the current set).
type SurveyView struct {
	SurveySnapshot
	Attachments []models.Gallery `json:"attachments"`
}

// SnapshotSurvey appends one immutable history entry for the survey. It
// must run inside the same transaction as the mutation that triggered it:
// if the mutation rolls back, so does the snapshot.
//
// The first entry per record is labeled "Initial version.", subsequent
// entries "v{n}" where n counts prior entries.
func SnapshotSurvey(tx *gorm.DB, survey *models.HappeningSurvey, actorID *uuid.UUID) error {
	var attachments []models.Gallery
	if err := tx.Model(survey).Association("Attachments").Find(&attachments); err != nil {
		return err
	}
	attachmentIDs := make([]uuid.UUID, 0, len(attachments))
	for _, a := range attachments {
		attachmentIDs = append(attachmentIDs, a.ID)
	}

	snapshot := SurveySnapshot{
		ID:              survey.ID,
		CategoryID:      survey.CategoryID,
		ProjectID:       survey.ProjectID,
		Title:           survey.Title,
		Description:     survey.Description,
		Sentiment:       survey.Sentiment,
		Improvement:     survey.Improvement,
		Location:        survey.Location,
		Boundary:        survey.Boundary,
		Status:          survey.Status,
		IsPublic:        survey.IsPublic,
		IsTest:          survey.IsTest,
		DataDump:        json.RawMessage(survey.DataDump.JSON),
		RegionID:        survey.RegionID,
		ProtectedAreaID: survey.ProtectedAreaID,
		AudioID:         survey.AudioID,
		AttachmentIDs:   attachmentIDs,
		CreatedByID:     survey.CreatedByID,
		UpdatedByID:     survey.UpdatedByID,
		CreatedAt:       survey.CreatedAt,
		ModifiedAt:      survey.ModifiedAt,
	}

	serialized, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	var priorCount int64
	if err := tx.Model(&models.HappeningSurveyVersion{}).
		Where("survey_id = ?", survey.ID).
		Count(&priorCount).Error; err != nil {
		return err
	}

	comment := initialVersionComment
	if priorCount > 0 {
		comment = fmt.Sprintf("v%d", priorCount)
	}

	entry := models.HappeningSurveyVersion{
		SurveyID:       survey.ID,
		SerializedData: models.JSON{JSON: datatypes.JSON(serialized)},
		Comment:        comment,
		CreatedByID:    actorID,
	}
	return tx.Create(&entry).Error
}

// RehydrateSurvey rebuilds the read-only view captured by a history entry,
// resolving the attachment set recorded in the snapshot. Attachments that
// have since been deleted are omitted.
func RehydrateSurvey(db *gorm.DB, entry *models.HappeningSurveyVersion) (*SurveyView, error) {
	var snapshot SurveySnapshot
	if err := json.Unmarshal(entry.SerializedData.JSON, &snapshot); err != nil {
		return nil, fmt.Errorf("corrupt history entry %d: %w", entry.ID, err)
	}

	view := &SurveyView{SurveySnapshot: snapshot}
	if len(snapshot.AttachmentIDs) > 0 {
		if err := db.Where("id IN ?", snapshot.AttachmentIDs).
			Find(&view.Attachments).Error; err != nil {
			return nil, err
		}
	}
	return view, nil
}

// SurveyHistory lists the history entries for a survey in creation order.
func SurveyHistory(db *gorm.DB, surveyID uuid.UUID) ([]models.HappeningSurveyVersion, error) {
	var entries []models.HappeningSurveyVersion
	err := db.Where("survey_id = ?", surveyID).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}
