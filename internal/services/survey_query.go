package services

import (
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/types"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// SurveyListFilter narrows the happeningSurveys query.
type SurveyListFilter struct {
	ID            string
	Title         string
	TitleContains string
	Limit         int
	Offset        int
}

// ListHappeningSurveys returns surveys visible to the actor: staff see
// all, authenticated users see their own plus public records, anonymous
// callers see only public records.
func ListHappeningSurveys(db *gorm.DB, actor *types.Actor, filter SurveyListFilter) ([]models.HappeningSurvey, error) {
	query := db.Model(&models.HappeningSurvey{})

	if db.Dialector.Name() == "mysql" {
		query = query.Clauses(hints.UseIndex("idx_happening_surveys_created_by_id"))
	}

	switch {
	case actor != nil && (actor.IsStaff || actor.IsSuperuser):
		// no visibility restriction
	case actor != nil:
		query = query.Where("is_public = ? OR created_by_id = ?", true, actor.ID)
	default:
		query = query.Where("is_public = ?", true)
	}

	if filter.ID != "" {
		query = query.Where("id = ?", filter.ID)
	}
	if filter.Title != "" {
		query = query.Where("title = ?", filter.Title)
	}
	if filter.TitleContains != "" {
		query = query.Where("title LIKE ?", "%"+filter.TitleContains+"%")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var surveys []models.HappeningSurvey
	err := query.
		Preload("Attachments").
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&surveys).Error
	return surveys, err
}

// GetHappeningSurvey fetches one survey with its attachments.
func GetHappeningSurvey(db *gorm.DB, id string) (*models.HappeningSurvey, error) {
	var survey models.HappeningSurvey
	err := db.Preload("Attachments").First(&survey, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}
