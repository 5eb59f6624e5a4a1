package services

import (
	"errors"

	"github.com/lukimgather/gather-api/internal/geometry"
	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

// bbox area expression over the denormalized boundary columns; used to pick
// the tightest containing boundary.
const bboxAreaOrder = "(max_lng - min_lng) * (max_lat - min_lat) ASC, id ASC"

// ResolveRegions finds the administrative Region and ProtectedArea whose
// boundary bounding box contains geom. Both lookups are independent; either
// may come back nil. A nil geometry resolves to (nil, nil) without error.
//
// Tie-break: when several boundaries contain the geometry, the smallest
// bounding-box area wins, ties broken by lowest id.
func ResolveRegions(db *gorm.DB, geom *geometry.Geometry) (*models.Region, *models.ProtectedArea, error) {
	if geom == nil || geom.Type == "" {
		return nil, nil, nil
	}
	box, err := geom.BBox()
	if err != nil {
		return nil, nil, err
	}

	var region *models.Region
	var found models.Region
	err = containingBoundaries(db.Model(&models.Region{}), box).First(&found).Error
	switch {
	case err == nil:
		region = &found
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, nil, err
	}

	var protectedArea *models.ProtectedArea
	var foundPA models.ProtectedArea
	err = containingBoundaries(db.Model(&models.ProtectedArea{}), box).First(&foundPA).Error
	switch {
	case err == nil:
		protectedArea = &foundPA
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, nil, err
	}

	return region, protectedArea, nil
}

func containingBoundaries(query *gorm.DB, box geometry.BoundingBox) *gorm.DB {
	return query.
		Where("min_lng IS NOT NULL").
		Where("min_lng <= ? AND max_lng >= ?", box.MinLng, box.MaxLng).
		Where("min_lat <= ? AND max_lat >= ?", box.MinLat, box.MaxLat).
		Order(bboxAreaOrder)
}
