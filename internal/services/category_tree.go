package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

// Tree queries over the materialized-path tables. Insertion paths are set
// by the models' AfterCreate hooks; moves are handled here because they
// rewrite a whole subtree.

// RootCategories lists top-level categories, used for top-level listings.
func RootCategories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("parent_id IS NULL").Order("title ASC").Find(&categories).Error
	return categories, err
}

// CategoryDescendants lists every category underneath the given node.
func CategoryDescendants(db *gorm.DB, categoryID uint64) ([]models.Category, error) {
	var node models.Category
	if err := db.First(&node, categoryID).Error; err != nil {
		return nil, err
	}
	var descendants []models.Category
	err := db.Where("path LIKE ? AND id <> ?", node.Path+"%", node.ID).
		Order("path ASC").Find(&descendants).Error
	return descendants, err
}

// CategoryAncestors lists the chain from root to the node's parent.
func CategoryAncestors(db *gorm.DB, categoryID uint64) ([]models.Category, error) {
	var node models.Category
	if err := db.First(&node, categoryID).Error; err != nil {
		return nil, err
	}
	ids := ancestorIDs(node.Path, node.ID)
	if len(ids) == 0 {
		return nil, nil
	}
	var ancestors []models.Category
	err := db.Where("id IN ?", ids).Order("depth ASC").Find(&ancestors).Error
	return ancestors, err
}

// MoveCategory reparents a node and rewrites the paths of its subtree in
// one transaction.
func MoveCategory(db *gorm.DB, categoryID uint64, newParentID *uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var node models.Category
		if err := tx.First(&node, categoryID).Error; err != nil {
			return err
		}

		newParentPath := "/"
		newDepth := 0
		if newParentID != nil {
			var parent models.Category
			if err := tx.First(&parent, *newParentID).Error; err != nil {
				return err
			}
			if strings.HasPrefix(parent.Path, node.Path) {
				return fmt.Errorf("cannot move category %d under its own descendant", categoryID)
			}
			newParentPath = parent.Path
			newDepth = parent.Depth + 1
		}

		oldPath := node.Path
		newPath := fmt.Sprintf("%s%d/", newParentPath, node.ID)
		depthDelta := newDepth - node.Depth

		if err := tx.Model(&models.Category{}).Where("id = ?", node.ID).
			Updates(map[string]interface{}{
				"parent_id": newParentID,
				"path":      newPath,
				"depth":     newDepth,
			}).Error; err != nil {
			return err
		}

		var subtree []models.Category
		if err := tx.Where("path LIKE ? AND id <> ?", oldPath+"%", node.ID).
			Find(&subtree).Error; err != nil {
			return err
		}
		for _, child := range subtree {
			rewritten := newPath + strings.TrimPrefix(child.Path, oldPath)
			if err := tx.Model(&models.Category{}).Where("id = ?", child.ID).
				Updates(map[string]interface{}{
					"path":  rewritten,
					"depth": child.Depth + depthDelta,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ancestorIDs extracts the ancestor id chain from a materialized path,
// excluding selfID.
func ancestorIDs(path string, selfID uint64) []uint64 {
	var ids []uint64
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		id, err := strconv.ParseUint(segment, 10, 64)
		if err != nil || id == selfID {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
