package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category classifies happening surveys. Categories form a tree via
// ParentID; Path/Depth are the materialized position (see tree.go).
type Category struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        *string    `gorm:"uniqueIndex;size:50" json:"code"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description"`
	ParentID    *uint64    `gorm:"index" json:"parentId"`
	Path        string     `gorm:"size:1024;index" json:"-"`
	Depth       int        `gorm:"not null;default:0" json:"-"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CreatedByID *uuid.UUID `gorm:"type:char(36)" json:"createdById"`
	UpdatedByID *uuid.UUID `gorm:"type:char(36)" json:"updatedById"`
}

// AfterCreate writes the materialized path for the new node.
func (c *Category) AfterCreate(tx *gorm.DB) error {
	parentPath := rootPath
	depth := 0
	if c.ParentID != nil {
		var parent Category
		if err := tx.Select("path", "depth").First(&parent, *c.ParentID).Error; err != nil {
			return err
		}
		parentPath = parent.Path
		depth = parent.Depth + 1
	}
	c.Path = childPath(parentPath, c.ID)
	c.Depth = depth
	return tx.Model(&Category{}).Where("id = ?", c.ID).
		UpdateColumns(map[string]interface{}{"path": c.Path, "depth": c.Depth}).Error
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}
