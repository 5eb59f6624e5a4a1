package services

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/authorizerdev/authorizer-go"
	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/config"
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/types"
	"github.com/lukimgather/gather-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client (singleton pattern)
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	var initErr error

	authOnce.Do(func() {
		// Ping the Authorizer service first
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

		var err error
		authClient, err = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if err != nil {
			initErr = fmt.Errorf("failed to create authorizer client: %w", err)
			return
		}
	})

	return initErr
}

// SessionProfile is the identity extracted from a valid session.
type SessionProfile struct {
	ID          string
	Email       string
	DisplayName string
	Roles       []string
}

// ValidateSession validates a session cookie and extracts the profile
func ValidateSession(cookie string) (*SessionProfile, error) {
	if authClient == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("session is not valid")
	}

	if res.User == nil {
		return nil, fmt.Errorf("session has no user")
	}

	roles := make([]string, 0, len(res.User.Roles))
	for _, r := range res.User.Roles {
		if r != nil {
			roles = append(roles, *r)
		}
	}
	profile := &SessionProfile{
		ID:    res.User.ID,
		Email: res.User.Email,
		Roles: roles,
	}
	if res.User.GivenName != nil {
		profile.DisplayName = strings.TrimSpace(*res.User.GivenName)
	}
	return profile, nil
}

// ActorFromProfile maps a session profile onto the local user row,
// creating it on first sight, and returns the request actor. The
// authorizer's "admin" role marks staff.
func ActorFromProfile(db *gorm.DB, profile *SessionProfile) (*types.Actor, error) {
	id, err := uuid.Parse(profile.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id in session: %w", err)
	}

	user := models.User{
		ID:          id,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
	}
	for _, role := range profile.Roles {
		if role == "admin" {
			user.IsStaff = true
		}
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "display_name"}),
	}).Create(&user).Error; err != nil {
		return nil, err
	}

	// Reload to pick up locally managed flags (superuser, moderation).
	var stored models.User
	if err := db.First(&stored, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &types.Actor{
		ID:                stored.ID,
		Email:             stored.Email,
		IsStaff:           stored.IsStaff || user.IsStaff,
		IsSuperuser:       stored.IsSuperuser,
		CanModerateSurvey: stored.CanModerateSurvey,
	}, nil
}
