package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/utils"
	"gorm.io/gorm"
)

// TileHandler serves GeoJSON feature collections for map layers.
type TileHandler struct {
	DB *gorm.DB
}

// HappeningSurveyTiles handles GET /tiles/happening-surveys
// @Summary Happening-survey map layer
// @Description GeoJSON FeatureCollection of public, moderated survey records
// @Tags Tiles
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tiles/happening-surveys [get]
func (h *TileHandler) HappeningSurveyTiles(c *fiber.Ctx) error {
	var surveys []models.HappeningSurvey
	err := h.DB.Preload("Category").
		Where("is_public = ? AND is_test = ?", true, false).
		Where("location IS NOT NULL OR boundary IS NOT NULL").
		Find(&surveys).Error
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "happeningSurveyTiles")
	}

	features := make([]fiber.Map, 0, len(surveys))
	for i := range surveys {
		s := &surveys[i]
		geom := s.Location
		if geom == nil {
			geom = s.Boundary
		}
		var category *string
		if s.Category != nil {
			category = &s.Category.Title
		}
		features = append(features, fiber.Map{
			"type":     "Feature",
			"geometry": geom,
			"properties": fiber.Map{
				"id":          s.ID,
				"category":    category,
				"title":       s.Title,
				"description": s.Description,
				"sentiment":   s.Sentiment,
				"improvement": s.Improvement,
				"status":      s.Status,
			},
		})
	}
	return c.Status(fiber.StatusOK).JSON(featureCollection(features))
}

// ProtectedAreaTiles handles GET /tiles/protected-areas
// @Summary Protected-area map layer
// @Description GeoJSON FeatureCollection of protected-area boundaries
// @Tags Tiles
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /tiles/protected-areas [get]
func (h *TileHandler) ProtectedAreaTiles(c *fiber.Ctx) error {
	var areas []models.ProtectedArea
	if err := h.DB.Where("boundary IS NOT NULL").Find(&areas).Error; err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "protectedAreaTiles")
	}

	features := make([]fiber.Map, 0, len(areas))
	for i := range areas {
		a := &areas[i]
		features = append(features, fiber.Map{
			"type":     "Feature",
			"geometry": a.Boundary,
			"properties": fiber.Map{
				"id":   a.ID,
				"name": a.Name,
			},
		})
	}
	return c.Status(fiber.StatusOK).JSON(featureCollection(features))
}

func featureCollection(features []fiber.Map) fiber.Map {
	return fiber.Map{
		"type":     "FeatureCollection",
		"features": features,
	}
}
