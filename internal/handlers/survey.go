package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/middleware"
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/services"
	"github.com/lukimgather/gather-api/internal/types"
	"github.com/lukimgather/gather-api/internal/utils"
	"gorm.io/gorm"
)

// SurveyHandler handles happening-survey routes
type SurveyHandler struct {
	Service *services.SurveyService
}

// ListHappeningSurveys handles GET /api/happening-surveys
// @Summary List happening surveys
// @Description List happening surveys visible to the caller; anonymous callers see only public records
// @Tags HappeningSurvey
// @Accept json
// @Produce json
// @Param id query string false "Filter by survey id"
// @Param title query string false "Filter by exact title"
// @Param title_contains query string false "Filter by title substring"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /happening-surveys [get]
func (h *SurveyHandler) ListHappeningSurveys(c *fiber.Ctx) error {
	filter := services.SurveyListFilter{
		ID:            c.Query("id"),
		Title:         c.Query("title"),
		TitleContains: c.Query("title_contains"),
		Limit:         c.QueryInt("limit"),
		Offset:        c.QueryInt("offset"),
	}

	surveys, err := services.ListHappeningSurveys(h.Service.DB, middleware.Actor(c), filter)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "listHappeningSurveys")
	}
	return c.Status(fiber.StatusOK).JSON(surveys)
}

// GetHappeningSurvey handles GET /api/happening-surveys/:id
// @Summary Get one happening survey
// @Description Get a happening survey with its attachments
// @Tags HappeningSurvey
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /happening-surveys/{id} [get]
func (h *SurveyHandler) GetHappeningSurvey(c *fiber.Ctx) error {
	survey, err := services.GetHappeningSurvey(h.Service.DB, c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundResponse(c, services.ErrNotFound.Error())
		}
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "getHappeningSurvey")
	}
	return c.Status(fiber.StatusOK).JSON(survey)
}

// CreateHappeningSurvey handles POST /api/happening-surveys
// @Summary Create a happening survey
// @Description Create a happening survey; anonymous=true omits creator attribution
// @Tags HappeningSurvey
// @Accept json
// @Accept mpfd
// @Produce json
// @Param anonymous query bool false "Submit without creator attribution"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.MutationResponseStruct
// @Failure 500 {object} utils.MutationResponseStruct
// @Router /happening-surveys [post]
func (h *SurveyHandler) CreateHappeningSurvey(c *fiber.Ctx) error {
	var payload struct {
		Anonymous bool                 `json:"anonymous"`
		Data      HappeningSurveyInput `json:"data"`
	}
	if err := parsePayload(c, &payload); err != nil {
		return utils.MutationErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if c.QueryBool("anonymous") {
		payload.Anonymous = true
	}

	attachments, err := parseUploads(c)
	if err != nil {
		return utils.MutationErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	audio, err := parseAudio(c)
	if err != nil {
		return utils.MutationErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	in := services.CreateSurveyInput{
		ID:          payload.Data.ID,
		CategoryID:  payload.Data.CategoryID,
		ProjectID:   payload.Data.ProjectID,
		Title:       payload.Data.Title,
		Description: payload.Data.Description,
		Sentiment:   payload.Data.Sentiment,
		Improvement: payload.Data.Improvement,
		Location:    payload.Data.Location,
		Boundary:    payload.Data.Boundary,
		IsPublic:    payload.Data.IsPublic,
		IsTest:      payload.Data.IsTest,
		DataDump:    payload.Data.DataDump,
		CreatedAt:   payload.Data.CreatedAt,
		Attachments: attachments,
		Audio:       audio,
	}

	survey, err := h.Service.Create(middleware.Actor(c), payload.Anonymous, in)
	if err != nil {
		return mutationError(c, err, "createHappeningSurvey")
	}
	return utils.MutationResponse(c, fiber.StatusOK, survey)
}

// UpdateHappeningSurvey handles PUT /api/happening-surveys/:id
// @Summary Update a happening survey
// @Description Apply a sparse field payload to an existing survey
// @Tags HappeningSurvey
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.MutationResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /happening-surveys/{id} [put]
func (h *SurveyHandler) UpdateHappeningSurvey(c *fiber.Ctx) error {
	return h.mutate(c, h.Service.Update, "updateHappeningSurvey")
}

// EditHappeningSurvey handles PATCH /api/happening-surveys/:id
// @Summary Edit a happening survey
// @Description Partial-update twin of update; same payload and semantics
// @Tags HappeningSurvey
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.MutationResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /happening-surveys/{id} [patch]
func (h *SurveyHandler) EditHappeningSurvey(c *fiber.Ctx) error {
	return h.mutate(c, h.Service.Edit, "editHappeningSurvey")
}

// DeleteHappeningSurvey handles DELETE /api/happening-surveys/:id
// @Summary Delete a happening survey
// @Description Delete a survey the caller is allowed to edit
// @Tags HappeningSurvey
// @Accept json
// @Produce json
// @Param id path string true "Survey ID"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /happening-surveys/{id} [delete]
func (h *SurveyHandler) DeleteHappeningSurvey(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, "invalid survey id", fiber.StatusBadRequest, "deleteHappeningSurvey")
	}
	if err := h.Service.Delete(middleware.Actor(c), id); err != nil {
		return mutationError(c, err, "deleteHappeningSurvey")
	}
	return utils.MutationResponse(c, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *SurveyHandler) mutate(
	c *fiber.Ctx,
	op func(actor *types.Actor, id uuid.UUID, in services.UpdateSurveyInput) (*models.HappeningSurvey, error),
	errorType string,
) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, "invalid survey id", fiber.StatusBadRequest, errorType)
	}

	var payload struct {
		Data UpdateHappeningSurveyInput `json:"data"`
	}
	if err := parsePayload(c, &payload); err != nil {
		return utils.MutationErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	uploads, err := parseUploads(c)
	if err != nil {
		return utils.MutationErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	in := services.UpdateSurveyInput{
		CategoryID:      payload.Data.CategoryID,
		ProjectID:       payload.Data.ProjectID,
		Title:           payload.Data.Title,
		Description:     payload.Data.Description,
		Sentiment:       payload.Data.Sentiment,
		Improvement:     payload.Data.Improvement,
		Location:        payload.Data.Location,
		Boundary:        payload.Data.Boundary,
		Status:          payload.Data.Status,
		IsPublic:        payload.Data.IsPublic,
		IsTest:          payload.Data.IsTest,
		DataDump:        payload.Data.DataDump,
		ModifiedAt:      payload.Data.ModifiedAt,
		AttachmentLinks: payload.Data.AttachmentLinks,
		Attachments:     uploads,
	}

	survey, err := op(middleware.Actor(c), id, in)
	if err != nil {
		return mutationError(c, err, errorType)
	}
	return utils.MutationResponse(c, fiber.StatusOK, survey)
}

// mutationError maps service failures onto the wire: validation failures
// keep the mutation envelope with field errors, not-found and
// authorization become request-level errors, anything else is a generic
// failed envelope.
func mutationError(c *fiber.Ctx, err error, errorType string) error {
	if ve, ok := services.AsValidationError(err); ok {
		return utils.MutationErrorResponse(c, fiber.StatusBadRequest, ve.Fields)
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrPermissionDenied), errors.Is(err, services.ErrNotAuthenticated):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, errorType)
	}
	return utils.MutationErrorResponse(c, fiber.StatusInternalServerError, err.Error())
}
