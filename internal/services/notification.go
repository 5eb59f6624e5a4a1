package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

// EntityRef is a tagged reference to a known record kind; notifications
// carry these instead of generic foreign keys.
type EntityRef struct {
	Kind models.EntityKind
	ID   string
}

// entityResolvers is the explicit lookup table used to resolve an
// EntityRef into its record. Adding a referenceable kind means adding an
// entry here.
var entityResolvers = map[models.EntityKind]func(db *gorm.DB, id string) (interface{}, error){
	models.EntityKindSurvey: func(db *gorm.DB, id string) (interface{}, error) {
		var s models.HappeningSurvey
		if err := db.First(&s, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &s, nil
	},
	models.EntityKindUser: func(db *gorm.DB, id string) (interface{}, error) {
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &u, nil
	},
	models.EntityKindProject: func(db *gorm.DB, id string) (interface{}, error) {
		var p models.Project
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &p, nil
	},
	models.EntityKindCategory: func(db *gorm.DB, id string) (interface{}, error) {
		var c models.Category
		if err := db.First(&c, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &c, nil
	},
}

// ResolveEntity looks up the record an EntityRef points at.
func ResolveEntity(db *gorm.DB, ref EntityRef) (interface{}, error) {
	resolver, ok := entityResolvers[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", ref.Kind)
	}
	return resolver(db, ref.ID)
}

// Notify writes one inbox entry for the recipient.
func Notify(db *gorm.DB, recipientID uuid.UUID, actor EntityRef, verb, description, notificationType string, actionObject EntityRef) error {
	if recipientID == uuid.Nil {
		return errors.New("notification requires a recipient")
	}
	notification := models.Notification{
		RecipientID:      recipientID,
		ActorKind:        actor.Kind,
		ActorID:          actor.ID,
		Verb:             verb,
		Description:      description,
		NotificationType: notificationType,
		Timestamp:        time.Now().UTC(),
		ActionObjectKind: actionObject.Kind,
		ActionObjectID:   actionObject.ID,
	}
	return db.Create(&notification).Error
}
