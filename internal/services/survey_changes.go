package services

import (
	"github.com/lukimgather/gather-api/internal/models"
)

// Trackable survey fields, compared by value when computing the changed
// set for a save. The changed set gates history comments and the
// moderation dispatcher; a comparator that cannot produce a verdict (for
// example a reference that no longer resolves) excludes its field from the
// set instead of failing the save.
type fieldComparator func(old, current *models.HappeningSurvey) (changed bool, err error)

var surveyFieldComparators = map[string]fieldComparator{
	"category_id": func(o, c *models.HappeningSurvey) (bool, error) {
		return !uint64PtrEqual(o.CategoryID, c.CategoryID), nil
	},
	"project_id": func(o, c *models.HappeningSurvey) (bool, error) {
		return !uint64PtrEqual(o.ProjectID, c.ProjectID), nil
	},
	"title": func(o, c *models.HappeningSurvey) (bool, error) {
		return !stringPtrEqual(o.Title, c.Title), nil
	},
	"description": func(o, c *models.HappeningSurvey) (bool, error) {
		return !stringPtrEqual(o.Description, c.Description), nil
	},
	"sentiment": func(o, c *models.HappeningSurvey) (bool, error) {
		return !stringPtrEqual(o.Sentiment, c.Sentiment), nil
	},
	"improvement": func(o, c *models.HappeningSurvey) (bool, error) {
		return !stringPtrEqual(o.Improvement, c.Improvement), nil
	},
	"location": func(o, c *models.HappeningSurvey) (bool, error) {
		return !o.Location.Equal(c.Location), nil
	},
	"boundary": func(o, c *models.HappeningSurvey) (bool, error) {
		return !o.Boundary.Equal(c.Boundary), nil
	},
	"status": func(o, c *models.HappeningSurvey) (bool, error) {
		return o.Status != c.Status, nil
	},
	"is_public": func(o, c *models.HappeningSurvey) (bool, error) {
		return o.IsPublic != c.IsPublic, nil
	},
	"is_test": func(o, c *models.HappeningSurvey) (bool, error) {
		return o.IsTest != c.IsTest, nil
	},
	"data_dump": func(o, c *models.HappeningSurvey) (bool, error) {
		return string(o.DataDump.JSON) != string(c.DataDump.JSON), nil
	},
	"audio_id": func(o, c *models.HappeningSurvey) (bool, error) {
		return !uuidPtrEqual(o.AudioID, c.AudioID), nil
	},
}

// diffSurveyFields returns the names of trackable fields whose values
// differ between old and current. Fields whose comparator errors are
// silently excluded.
func diffSurveyFields(old, current *models.HappeningSurvey) []string {
	if old == nil {
		return nil
	}
	var changed []string
	for name, compare := range surveyFieldComparators {
		differs, err := compare(old, current)
		if err != nil {
			continue
		}
		if differs {
			changed = append(changed, name)
		}
	}
	return changed
}

func fieldChanged(changed []string, name string) bool {
	for _, f := range changed {
		if f == name {
			return true
		}
	}
	return false
}
