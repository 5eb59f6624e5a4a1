package services

import (
	"fmt"
	"log"

	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

// Dispatcher reacts to persisted happening-survey saves: it notifies
// creators about visibility and moderation changes, resolves the
// geographic region, and fans out category alert emails. Everything here
// is best-effort; a failure is logged and never propagates back into the
// mutation that triggered it.
type Dispatcher struct {
	DB      *gorm.DB
	Outbox  *Outbox
	BaseURL string
}

// SurveySaved evaluates one persisted save. created marks a fresh record;
// changed is the changed-field set computed by the store (nil for
// creation).
func (d *Dispatcher) SurveySaved(survey *models.HappeningSurvey, created bool, changed []string) {
	d.dispatchModeration(survey, created, changed)
	if created {
		d.dispatchCategoryTrigger(survey)
	}
}

func (d *Dispatcher) dispatchModeration(survey *models.HappeningSurvey, created bool, changed []string) {
	title := ""
	if survey.Title != nil {
		title = *survey.Title
	}

	// Without an updating actor there is nobody to attribute the privacy
	// change to; fall through to the status check instead.
	if fieldChanged(changed, "is_public") && !survey.IsPublic && survey.UpdatedByID != nil {
		if survey.CreatedByID != nil {
			actorName := survey.UpdatedByID.String()
			var updatedBy models.User
			if err := d.DB.First(&updatedBy, "id = ?", *survey.UpdatedByID).Error; err == nil && updatedBy.DisplayName != "" {
				actorName = updatedBy.DisplayName
			}
			err := Notify(d.DB, *survey.CreatedByID,
				EntityRef{Kind: models.EntityKindUser, ID: survey.UpdatedByID.String()},
				fmt.Sprintf("has made the project %q private", title),
				fmt.Sprintf("%s has made the project %q private.", actorName, title),
				"happening_survey_private",
				EntityRef{Kind: models.EntityKindSurvey, ID: survey.ID.String()},
			)
			if err != nil {
				log.Printf("private notification for survey %s failed: %v", survey.ID, err)
			}
		}
		return
	}

	if fieldChanged(changed, "status") {
		if survey.Status == models.StatusPending {
			return
		}
		if survey.CreatedByID != nil {
			actor := EntityRef{Kind: models.EntityKindUser}
			if survey.UpdatedByID != nil {
				actor.ID = survey.UpdatedByID.String()
			}
			err := Notify(d.DB, *survey.CreatedByID,
				actor,
				survey.Status,
				fmt.Sprintf("Admin has %s the project %q.", survey.Status, title),
				fmt.Sprintf("happening_survey_%s", survey.Status),
				EntityRef{Kind: models.EntityKindSurvey, ID: survey.ID.String()},
			)
			if err != nil {
				log.Printf("status notification for survey %s failed: %v", survey.ID, err)
			}
		}
		return
	}

	if created || fieldChanged(changed, "boundary") || fieldChanged(changed, "location") {
		d.resolveRegion(survey)
	}
}

// resolveRegion derives region/protected_area from location-or-boundary
// and persists them with a targeted column update. This is a second,
// separate transaction: a crash between the primary save and this write
// leaves the record unresolved, which the next location change repairs.
// UpdateColumns skips hooks so the dispatcher never re-enters itself.
func (d *Dispatcher) resolveRegion(survey *models.HappeningSurvey) {
	geom := survey.Location
	if geom == nil || geom.Type == "" {
		geom = survey.Boundary
	}
	region, protectedArea, err := ResolveRegions(d.DB, geom)
	if err != nil {
		log.Printf("region resolution for survey %s failed: %v", survey.ID, err)
		return
	}

	survey.RegionID = nil
	survey.ProtectedAreaID = nil
	if region != nil {
		survey.RegionID = &region.ID
	}
	if protectedArea != nil {
		survey.ProtectedAreaID = &protectedArea.ID
	}

	err = d.DB.Model(&models.HappeningSurvey{}).
		Where("id = ?", survey.ID).
		UpdateColumns(map[string]interface{}{
			"region_id":         survey.RegionID,
			"protected_area_id": survey.ProtectedAreaID,
		}).Error
	if err != nil {
		log.Printf("writing resolved region for survey %s failed: %v", survey.ID, err)
	}
}

// dispatchCategoryTrigger enqueues alert mail for every contact configured
// on the record's category. Enqueue only; the email worker owns delivery
// and retries.
func (d *Dispatcher) dispatchCategoryTrigger(survey *models.HappeningSurvey) {
	if survey.CategoryID == nil || d.Outbox == nil {
		return
	}
	var trigger models.CategoryActivityTrigger
	if err := d.DB.First(&trigger, "category_id = ?", *survey.CategoryID).Error; err != nil {
		return
	}
	var contacts []models.ContactEmail
	if err := d.DB.Find(&contacts, "category_activity_trigger_id = ?", trigger.ID).Error; err != nil || len(contacts) == 0 {
		return
	}

	var category models.Category
	categoryTitle := ""
	if err := d.DB.First(&category, *survey.CategoryID).Error; err == nil {
		categoryTitle = category.Title
	}
	title := ""
	if survey.Title != nil {
		title = *survey.Title
	}

	link := fmt.Sprintf("%s/surveys/%s", d.BaseURL, survey.ID)
	subject := fmt.Sprintf("New happening survey in %s: %s", categoryTitle, title)
	body := fmt.Sprintf("A new happening survey was submitted in %s.\n\nView it at %s\n", categoryTitle, link)

	for _, contact := range contacts {
		err := d.Outbox.EnqueueEmail(EmailJob{
			To:       contact.Email,
			Subject:  subject,
			Body:     body,
			SurveyID: survey.ID.String(),
		})
		if err != nil {
			log.Printf("enqueue category trigger mail for survey %s failed: %v", survey.ID, err)
		}
	}
}
