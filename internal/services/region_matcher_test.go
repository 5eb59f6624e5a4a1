package services

import (
	"testing"

	"github.com/lukimgather/gather-api/internal/geometry"
	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

func seedRegion(t *testing.T, db *gorm.DB, name string, rings [][][2]float64) *models.Region {
	t.Helper()
	region := models.Region{Name: name, Boundary: geometry.NewPolygon(rings)}
	if err := db.Create(&region).Error; err != nil {
		t.Fatalf("Failed to seed region %s: %v", name, err)
	}
	return &region
}

func TestResolveRegionsContainment(t *testing.T) {
	db := setupTestDB(t)
	madang := seedRegion(t, db, "Madang", [][][2]float64{{{144, -6}, {146, -6}, {146, -4}, {144, -4}, {144, -6}}})

	pa := models.ProtectedArea{
		Name:     "Coastal Reserve",
		Boundary: geometry.NewPolygon([][][2]float64{{{145, -5.5}, {145.5, -5.5}, {145.5, -5}, {145, -5}, {145, -5.5}}}),
	}
	if err := db.Create(&pa).Error; err != nil {
		t.Fatalf("Failed to seed protected area: %v", err)
	}

	region, protectedArea, err := ResolveRegions(db, geometry.NewPoint(145.2, -5.3))
	if err != nil {
		t.Fatalf("ResolveRegions failed: %v", err)
	}
	if region == nil || region.ID != madang.ID {
		t.Errorf("Expected region Madang, got %+v", region)
	}
	if protectedArea == nil || protectedArea.ID != pa.ID {
		t.Errorf("Expected protected area Coastal Reserve, got %+v", protectedArea)
	}
}

func TestResolveRegionsOutsideAllBoundaries(t *testing.T) {
	db := setupTestDB(t)
	seedRegion(t, db, "Madang", [][][2]float64{{{144, -6}, {146, -6}, {146, -4}, {144, -4}, {144, -6}}})

	region, protectedArea, err := ResolveRegions(db, geometry.NewPoint(10, 50))
	if err != nil {
		t.Fatalf("ResolveRegions failed: %v", err)
	}
	if region != nil || protectedArea != nil {
		t.Errorf("Expected no match outside all boundaries, got %+v / %+v", region, protectedArea)
	}
}

func TestResolveRegionsNilGeometry(t *testing.T) {
	db := setupTestDB(t)

	region, protectedArea, err := ResolveRegions(db, nil)
	if err != nil {
		t.Fatalf("ResolveRegions failed: %v", err)
	}
	if region != nil || protectedArea != nil {
		t.Error("Expected nil geometry to resolve to nothing")
	}
}

func TestResolveRegionsSmallestAreaWins(t *testing.T) {
	db := setupTestDB(t)
	seedRegion(t, db, "Momase", [][][2]float64{{{140, -10}, {150, -10}, {150, 0}, {140, 0}, {140, -10}}})
	madang := seedRegion(t, db, "Madang", [][][2]float64{{{144, -6}, {146, -6}, {146, -4}, {144, -4}, {144, -6}}})

	region, _, err := ResolveRegions(db, geometry.NewPoint(145, -5))
	if err != nil {
		t.Fatalf("ResolveRegions failed: %v", err)
	}
	if region == nil || region.ID != madang.ID {
		t.Errorf("Expected the tighter region Madang to win, got %+v", region)
	}
}

func TestResolveRegionsBoundaryBBoxSemantics(t *testing.T) {
	db := setupTestDB(t)
	madang := seedRegion(t, db, "Madang", [][][2]float64{{{144, -6}, {146, -6}, {146, -4}, {144, -4}, {144, -6}}})

	// A survey boundary is contained when its whole bbox fits.
	contained := geometry.NewPolygon([][][2]float64{{{144.5, -5.5}, {145.5, -5.5}, {145.5, -4.5}, {144.5, -4.5}, {144.5, -5.5}}})
	region, _, err := ResolveRegions(db, contained)
	if err != nil {
		t.Fatalf("ResolveRegions failed: %v", err)
	}
	if region == nil || region.ID != madang.ID {
		t.Errorf("Expected contained boundary to resolve, got %+v", region)
	}

	// A boundary that straddles the region edge does not.
	straddling := geometry.NewPolygon([][][2]float64{{{145, -5}, {147, -5}, {147, -3}, {145, -3}, {145, -5}}})
	region, _, err = ResolveRegions(db, straddling)
	if err != nil {
		t.Fatalf("ResolveRegions failed: %v", err)
	}
	if region != nil {
		t.Errorf("Expected straddling boundary to not resolve, got %+v", region)
	}
}
