package types

import "github.com/google/uuid"

// Actor is the authenticated identity attached to a request, as supplied
// by the auth middleware. A nil *Actor means the caller is anonymous.
type Actor struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	IsStaff           bool      `json:"isStaff"`
	IsSuperuser       bool      `json:"isSuperuser"`
	CanModerateSurvey bool      `json:"canModerateSurvey"`
}
