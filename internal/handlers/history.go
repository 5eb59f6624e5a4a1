package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/services"
	"github.com/lukimgather/gather-api/internal/utils"
	"gorm.io/gorm"
)

// HistoryHandler handles survey history routes
type HistoryHandler struct {
	DB *gorm.DB
}

// SurveyHistory handles GET /api/happening-surveys/:id/history
// @Summary List survey history
// @Description List the append-only history entries of a survey, each with its rehydrated point-in-time record
// @Tags HappeningSurvey
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /happening-surveys/{id}/history [get]
func (h *HistoryHandler) SurveyHistory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, "invalid survey id", fiber.StatusBadRequest, "surveyHistory")
	}

	entries, err := services.SurveyHistory(h.DB, id)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "surveyHistory")
	}

	out := make([]fiber.Map, 0, len(entries))
	for i := range entries {
		view, err := services.RehydrateSurvey(h.DB, &entries[i])
		if err != nil {
			return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "surveyHistory")
		}
		out = append(out, fiber.Map{
			"id":             entries[i].ID,
			"comment":        entries[i].Comment,
			"createdAt":      entries[i].CreatedAt,
			"createdById":    entries[i].CreatedByID,
			"serializedData": view,
		})
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
