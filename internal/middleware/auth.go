package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lukimgather/gather-api/internal/config"
	"github.com/lukimgather/gather-api/internal/services"
	"github.com/lukimgather/gather-api/internal/types"
	"gorm.io/gorm"
)

// actorKey is the fiber.Ctx locals key holding the request actor.
const actorKey = "actor"

// AuthRequired validates the session cookie and attaches the actor to the
// request context; requests without a valid session are rejected.
func AuthRequired(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := resolveActor(c, cfg, db)
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: err.Error(),
				Type:    "survey.authorization",
			}
		}
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// AuthOptional attaches the actor when a valid session is presented and
// lets anonymous requests through; used by routes that allow anonymous
// submission and public reads.
func AuthOptional(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actor, err := resolveActor(c, cfg, db); err == nil {
			c.Locals(actorKey, actor)
		}
		return c.Next()
	}
}

// Actor extracts the request actor set by the auth middleware; nil means
// anonymous.
func Actor(c *fiber.Ctx) *types.Actor {
	if actor, ok := c.Locals(actorKey).(*types.Actor); ok {
		return actor
	}
	return nil
}

func resolveActor(c *fiber.Ctx, cfg *config.Config, db *gorm.DB) (*types.Actor, error) {
	session := c.Cookies("cookie_session")
	if session == "" {
		return nil, fmt.Errorf("authorizer cookie \"cookie_session\" not found")
	}

	// The Authorizer client is initialized on the first authenticated
	// request so the redirect URL can be built from the request itself.
	if !services.IsAuthorizerInitialized() {
		if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
			return nil, err
		}
	}

	profile, err := services.ValidateSession(session)
	if err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}
	return services.ActorFromProfile(db, profile)
}
