package handlers

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/geometry"
	"github.com/lukimgather/gather-api/internal/services"
)

// HappeningSurveyInput is the createHappeningSurvey data payload.
type HappeningSurveyInput struct {
	ID          *uuid.UUID         `json:"id"`
	CategoryID  *uint64            `json:"categoryId"`
	ProjectID   *uint64            `json:"projectId"`
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Sentiment   *string            `json:"sentiment"`
	Improvement *string            `json:"improvement"`
	Location    *geometry.Geometry `json:"location"`
	Boundary    *geometry.Geometry `json:"boundary"`
	IsPublic    *bool              `json:"isPublic"`
	IsTest      *bool              `json:"isTest"`
	DataDump    json.RawMessage    `json:"dataDump"`
	CreatedAt   *time.Time         `json:"createdAt"`
}

// UpdateHappeningSurveyInput is the sparse update/edit data payload.
type UpdateHappeningSurveyInput struct {
	CategoryID      *uint64            `json:"categoryId"`
	ProjectID       *uint64            `json:"projectId"`
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	Sentiment       *string            `json:"sentiment"`
	Improvement     *string            `json:"improvement"`
	Location        *geometry.Geometry `json:"location"`
	Boundary        *geometry.Geometry `json:"boundary"`
	Status          *string            `json:"status"`
	IsPublic        *bool              `json:"isPublic"`
	IsTest          *bool              `json:"isTest"`
	DataDump        json.RawMessage    `json:"dataDump"`
	ModifiedAt      *time.Time         `json:"modifiedAt"`
	AttachmentLinks *[]uuid.UUID       `json:"attachmentLink"`
}

// parsePayload decodes the mutation payload. Mutations arrive either as a
// JSON body or as a multipart form with a "data" part plus attachment
// file parts (mobile clients upload media alongside the record).
func parsePayload(c *fiber.Ctx, dst interface{}) error {
	contentType := string(c.Request().Header.ContentType())
	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		data := c.FormValue("data")
		if data == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing data field")
		}
		return json.Unmarshal([]byte(data), dst)
	}
	return json.Unmarshal(c.Body(), dst)
}

// parseUploads collects attachment file parts from a multipart request.
func parseUploads(c *fiber.Ctx) ([]services.Upload, error) {
	contentType := string(c.Request().Header.ContentType())
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File["attachment"]
	uploads := make([]services.Upload, 0, len(files))
	for _, file := range files {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, services.Upload{Name: file.Filename, Content: f})
	}
	return uploads, nil
}

// parseAudio picks up the optional "audio" file part.
func parseAudio(c *fiber.Ctx) (*services.Upload, error) {
	contentType := string(c.Request().Header.ContentType())
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	files := form.File["audio"]
	if len(files) == 0 {
		return nil, nil
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, err
	}
	return &services.Upload{Name: files[0].Filename, Content: f}, nil
}
