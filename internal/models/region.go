package models

import (
	"time"

	"github.com/lukimgather/gather-api/internal/geometry"
	"gorm.io/gorm"
)

// Region is an administrative zone with a boundary polygon. The bounding
// box of the boundary is denormalized into four columns on save so that
// containment queries stay plain SQL range checks on every supported
// database.
type Region struct {
	ID        uint64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string             `gorm:"type:text;not null" json:"name"`
	Boundary  *geometry.Geometry `gorm:"type:json" json:"boundary,omitempty"`
	ParentID  *uint64            `gorm:"index" json:"parentId"`
	Path      string             `gorm:"size:1024;index" json:"-"`
	Depth     int                `gorm:"not null;default:0" json:"-"`
	MinLng    *float64           `gorm:"index:idx_region_bbox" json:"-"`
	MinLat    *float64           `gorm:"index:idx_region_bbox" json:"-"`
	MaxLng    *float64           `json:"-"`
	MaxLat    *float64           `json:"-"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// ProtectedArea is a conservation zone, independent of the Region tree but
// with identical mechanics.
type ProtectedArea struct {
	ID        uint64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string             `gorm:"type:text;not null" json:"name"`
	Boundary  *geometry.Geometry `gorm:"type:json" json:"boundary,omitempty"`
	ParentID  *uint64            `gorm:"index" json:"parentId"`
	Path      string             `gorm:"size:1024;index" json:"-"`
	Depth     int                `gorm:"not null;default:0" json:"-"`
	MinLng    *float64           `gorm:"index:idx_protected_area_bbox" json:"-"`
	MinLat    *float64           `gorm:"index:idx_protected_area_bbox" json:"-"`
	MaxLng    *float64           `json:"-"`
	MaxLat    *float64           `json:"-"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func bboxColumns(boundary *geometry.Geometry) (minLng, minLat, maxLng, maxLat *float64, err error) {
	if boundary == nil {
		return nil, nil, nil, nil, nil
	}
	box, err := boundary.BBox()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return &box.MinLng, &box.MinLat, &box.MaxLng, &box.MaxLat, nil
}

// BeforeSave keeps the denormalized bbox columns in sync with the boundary.
func (r *Region) BeforeSave(tx *gorm.DB) error {
	var err error
	r.MinLng, r.MinLat, r.MaxLng, r.MaxLat, err = bboxColumns(r.Boundary)
	return err
}

// AfterCreate writes the materialized path for the new node.
func (r *Region) AfterCreate(tx *gorm.DB) error {
	parentPath := rootPath
	depth := 0
	if r.ParentID != nil {
		var parent Region
		if err := tx.Select("path", "depth").First(&parent, *r.ParentID).Error; err != nil {
			return err
		}
		parentPath = parent.Path
		depth = parent.Depth + 1
	}
	r.Path = childPath(parentPath, r.ID)
	r.Depth = depth
	return tx.Model(&Region{}).Where("id = ?", r.ID).
		UpdateColumns(map[string]interface{}{"path": r.Path, "depth": r.Depth}).Error
}

// BeforeSave keeps the denormalized bbox columns in sync with the boundary.
func (p *ProtectedArea) BeforeSave(tx *gorm.DB) error {
	var err error
	p.MinLng, p.MinLat, p.MaxLng, p.MaxLat, err = bboxColumns(p.Boundary)
	return err
}

// AfterCreate writes the materialized path for the new node.
func (p *ProtectedArea) AfterCreate(tx *gorm.DB) error {
	parentPath := rootPath
	depth := 0
	if p.ParentID != nil {
		var parent ProtectedArea
		if err := tx.Select("path", "depth").First(&parent, *p.ParentID).Error; err != nil {
			return err
		}
		parentPath = parent.Path
		depth = parent.Depth + 1
	}
	p.Path = childPath(parentPath, p.ID)
	p.Depth = depth
	return tx.Model(&ProtectedArea{}).Where("id = ?", p.ID).
		UpdateColumns(map[string]interface{}{"path": p.Path, "depth": p.Depth}).Error
}

// TableName overrides the table name for Region
func (Region) TableName() string {
	return "regions"
}

// TableName overrides the table name for ProtectedArea
func (ProtectedArea) TableName() string {
	return "protected_areas"
}
