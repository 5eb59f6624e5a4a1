package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectUser{},
		&models.Category{},
		&models.Region{},
		&models.ProtectedArea{},
		&models.Gallery{},
		&models.HappeningSurvey{},
		&models.HappeningSurveyVersion{},
		&models.Notification{},
		&models.CategoryActivityTrigger{},
		&models.ContactEmail{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email, DisplayName: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &user
}

func testActor(user *models.User) *types.Actor {
	return &types.Actor{
		ID:                user.ID,
		Email:             user.Email,
		IsStaff:           user.IsStaff,
		IsSuperuser:       user.IsSuperuser,
		CanModerateSurvey: user.CanModerateSurvey,
	}
}

func strptr(s string) *string { return &s }

func uintptr64(v uint64) *uint64 { return &v }

func boolptr(b bool) *bool { return &b }
