package services

import (
	"fmt"
	"testing"

	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

func seedCategory(t *testing.T, db *gorm.DB, title string, parentID *uint64) *models.Category {
	t.Helper()
	category := models.Category{Title: title, ParentID: parentID}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", title, err)
	}
	return &category
}

func TestCategoryPathsOnInsert(t *testing.T) {
	db := setupTestDB(t)

	root := seedCategory(t, db, "Environment", nil)
	child := seedCategory(t, db, "Water", &root.ID)
	grandchild := seedCategory(t, db, "Rivers", &child.ID)

	var stored models.Category
	if err := db.First(&stored, grandchild.ID).Error; err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	wantPath := fmt.Sprintf("/%d/%d/%d/", root.ID, child.ID, grandchild.ID)
	if stored.Path != wantPath {
		t.Errorf("Expected path %s, got %s", wantPath, stored.Path)
	}
	if stored.Depth != 2 {
		t.Errorf("Expected depth 2, got %d", stored.Depth)
	}
}

func TestCategoryDescendantsAndAncestors(t *testing.T) {
	db := setupTestDB(t)

	root := seedCategory(t, db, "Environment", nil)
	water := seedCategory(t, db, "Water", &root.ID)
	rivers := seedCategory(t, db, "Rivers", &water.ID)
	seedCategory(t, db, "Land", &root.ID)

	descendants, err := CategoryDescendants(db, root.ID)
	if err != nil {
		t.Fatalf("CategoryDescendants failed: %v", err)
	}
	if len(descendants) != 3 {
		t.Errorf("Expected 3 descendants of root, got %d", len(descendants))
	}

	ancestors, err := CategoryAncestors(db, rivers.ID)
	if err != nil {
		t.Fatalf("CategoryAncestors failed: %v", err)
	}
	if len(ancestors) != 2 {
		t.Fatalf("Expected 2 ancestors, got %d", len(ancestors))
	}
	if ancestors[0].ID != root.ID || ancestors[1].ID != water.ID {
		t.Errorf("Expected root-to-parent order, got %+v", ancestors)
	}
}

func TestMoveCategoryRewritesSubtree(t *testing.T) {
	db := setupTestDB(t)

	root := seedCategory(t, db, "Environment", nil)
	water := seedCategory(t, db, "Water", &root.ID)
	rivers := seedCategory(t, db, "Rivers", &water.ID)
	other := seedCategory(t, db, "Infrastructure", nil)

	if err := MoveCategory(db, water.ID, &other.ID); err != nil {
		t.Fatalf("MoveCategory failed: %v", err)
	}

	var movedChild models.Category
	if err := db.First(&movedChild, rivers.ID).Error; err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	wantPath := fmt.Sprintf("/%d/%d/%d/", other.ID, water.ID, rivers.ID)
	if movedChild.Path != wantPath {
		t.Errorf("Expected rewritten path %s, got %s", wantPath, movedChild.Path)
	}
	if movedChild.Depth != 2 {
		t.Errorf("Expected depth 2 after move, got %d", movedChild.Depth)
	}
}

func TestMoveCategoryRejectsCycle(t *testing.T) {
	db := setupTestDB(t)

	root := seedCategory(t, db, "Environment", nil)
	child := seedCategory(t, db, "Water", &root.ID)

	if err := MoveCategory(db, root.ID, &child.ID); err == nil {
		t.Fatal("Expected moving a node under its own descendant to fail")
	}
}

func TestResolveEntity(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	resolved, err := ResolveEntity(db, EntityRef{Kind: models.EntityKindUser, ID: user.ID.String()})
	if err != nil {
		t.Fatalf("ResolveEntity failed: %v", err)
	}
	if u, ok := resolved.(*models.User); !ok || u.ID != user.ID {
		t.Errorf("Expected the seeded user, got %+v", resolved)
	}

	if _, err := ResolveEntity(db, EntityRef{Kind: "widget", ID: "1"}); err == nil {
		t.Error("Expected unknown entity kind to fail")
	}
}
