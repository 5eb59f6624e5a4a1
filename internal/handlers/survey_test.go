package handlers

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/lukimgather/gather-api/internal/models"
	"github.com/lukimgather/gather-api/internal/services"
	"github.com/lukimgather/gather-api/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectUser{},
		&models.Category{},
		&models.Region{},
		&models.ProtectedArea{},
		&models.Gallery{},
		&models.HappeningSurvey{},
		&models.HappeningSurveyVersion{},
		&models.Notification{},
		&models.CategoryActivityTrigger{},
		&models.ContactEmail{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// withActor injects a request actor the way the auth middleware would.
func withActor(actor *types.Actor) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if actor != nil {
			c.Locals("actor", actor)
		}
		return c.Next()
	}
}

func setupTestApp(t *testing.T, db *gorm.DB, actor *types.Actor) *fiber.App {
	t.Helper()
	service := &services.SurveyService{
		DB:         db,
		Dispatcher: &services.Dispatcher{DB: db},
	}
	handler := &SurveyHandler{Service: service}
	historyHandler := &HistoryHandler{DB: db}
	tileHandler := &TileHandler{DB: db}

	app := fiber.New()
	app.Use(withActor(actor))
	app.Get("/tiles/happening-surveys", tileHandler.HappeningSurveyTiles)
	api := app.Group("/api")
	api.Get("/happening-surveys", handler.ListHappeningSurveys)
	api.Get("/happening-surveys/:id", handler.GetHappeningSurvey)
	api.Get("/happening-surveys/:id/history", historyHandler.SurveyHistory)
	api.Post("/happening-surveys", handler.CreateHappeningSurvey)
	api.Put("/happening-surveys/:id", handler.UpdateHappeningSurvey)
	api.Patch("/happening-surveys/:id", handler.EditHappeningSurvey)
	api.Delete("/happening-surveys/:id", handler.DeleteHappeningSurvey)
	return app
}

func seedActor(t *testing.T, db *gorm.DB, email string) *types.Actor {
	t.Helper()
	user := models.User{Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return &types.Actor{ID: user.ID, Email: user.Email}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Non-JSON response (%d): %s", resp.StatusCode, raw)
		}
	}
	return resp, decoded
}

func TestCreateHappeningSurveyEnvelope(t *testing.T) {
	db := setupTestDB(t)
	actor := seedActor(t, db, "alice@example.com")
	app := setupTestApp(t, db, actor)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "Mangrove dieback"},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["ok"] != true {
		t.Errorf("Expected ok=true, got %v", body["ok"])
	}
	if body["errors"] != nil {
		t.Errorf("Expected null errors, got %v", body["errors"])
	}
	result, ok := body["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected a result object, got %v", body["result"])
	}
	if result["status"] != models.StatusPending {
		t.Errorf("Expected pending status in result, got %v", result["status"])
	}
}

func TestCreateHappeningSurveyValidationEnvelope(t *testing.T) {
	db := setupTestDB(t)
	actor := seedActor(t, db, "alice@example.com")
	app := setupTestApp(t, db, actor)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "Bad", "improvement": "skyrocketing"},
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %v", resp.StatusCode, body)
	}
	if body["ok"] != false {
		t.Errorf("Expected ok=false, got %v", body["ok"])
	}
	errs, ok := body["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected field errors object, got %v", body["errors"])
	}
	if _, found := errs["improvement"]; !found {
		t.Errorf("Expected an improvement field error, got %v", errs)
	}
}

func TestUpdateHappeningSurveyNotFound(t *testing.T) {
	db := setupTestDB(t)
	actor := seedActor(t, db, "alice@example.com")
	app := setupTestApp(t, db, actor)

	resp, body := doJSON(t, app, fiber.MethodPut,
		"/api/happening-surveys/6b1cfa33-1f7c-4f1a-9f6a-0a4b9df6b001",
		fiber.Map{"data": fiber.Map{"title": "Renamed"}})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %v", resp.StatusCode, body)
	}
	if body["message"] != "happening survey doesn't exist" {
		t.Errorf("Unexpected message: %v", body["message"])
	}
}

func TestUpdateHappeningSurveyForbidden(t *testing.T) {
	db := setupTestDB(t)
	creator := seedActor(t, db, "alice@example.com")
	stranger := seedActor(t, db, "mallory@example.com")

	creatorApp := setupTestApp(t, db, creator)
	_, created := doJSON(t, creatorApp, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "Owned"},
	})
	result := created["result"].(map[string]interface{})
	id, _ := result["id"].(string)
	if id == "" {
		t.Fatalf("Could not extract survey id from %v", result)
	}

	strangerApp := setupTestApp(t, db, stranger)
	resp, body := doJSON(t, strangerApp, fiber.MethodPut, "/api/happening-surveys/"+id,
		fiber.Map{"data": fiber.Map{"title": "Hijacked"}})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("Expected 403, got %d: %v", resp.StatusCode, body)
	}
}

func TestListHappeningSurveysAnonymousSeesPublicOnly(t *testing.T) {
	db := setupTestDB(t)
	actor := seedActor(t, db, "alice@example.com")

	authedApp := setupTestApp(t, db, actor)
	doJSON(t, authedApp, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "Public record"},
	})
	doJSON(t, authedApp, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "Private record", "isPublic": false},
	})

	anonApp := setupTestApp(t, db, nil)
	req := httptest.NewRequest(fiber.MethodGet, "/api/happening-surveys", nil)
	resp, err := anonApp.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var surveys []map[string]interface{}
	if err := json.Unmarshal(raw, &surveys); err != nil {
		t.Fatalf("Failed to decode list: %s", raw)
	}
	if len(surveys) != 1 {
		t.Errorf("Expected anonymous caller to see 1 survey, got %d", len(surveys))
	}
}

func TestSurveyHistoryEndpoint(t *testing.T) {
	db := setupTestDB(t)
	actor := seedActor(t, db, "alice@example.com")
	app := setupTestApp(t, db, actor)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "Versioned"},
	})
	result := created["result"].(map[string]interface{})
	id, _ := result["id"].(string)
	if id == "" {
		t.Fatalf("Could not extract survey id from %v", result)
	}

	doJSON(t, app, fiber.MethodPut, "/api/happening-surveys/"+id,
		fiber.Map{"data": fiber.Map{"title": "Versioned again"}})

	req := httptest.NewRequest(fiber.MethodGet, "/api/happening-surveys/"+id+"/history", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var entries []map[string]interface{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		t.Fatalf("Failed to decode history: %s", raw)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(entries))
	}
	if entries[0]["comment"] != "Initial version." || entries[1]["comment"] != "v1" {
		t.Errorf("Unexpected labels: %v, %v", entries[0]["comment"], entries[1]["comment"])
	}
}

func TestHappeningSurveyTiles(t *testing.T) {
	db := setupTestDB(t)
	actor := seedActor(t, db, "alice@example.com")
	app := setupTestApp(t, db, actor)

	doJSON(t, app, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{
			"title":    "Mapped record",
			"location": fiber.Map{"type": "Point", "coordinates": []float64{145.2, -5.1}},
		},
	})
	doJSON(t, app, fiber.MethodPost, "/api/happening-surveys", fiber.Map{
		"data": fiber.Map{"title": "No geometry"},
	})

	req := httptest.NewRequest(fiber.MethodGet, "/tiles/happening-surveys", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var collection map[string]interface{}
	if err := json.Unmarshal(raw, &collection); err != nil {
		t.Fatalf("Failed to decode collection: %s", raw)
	}
	if collection["type"] != "FeatureCollection" {
		t.Errorf("Expected FeatureCollection, got %v", collection["type"])
	}
	features, ok := collection["features"].([]interface{})
	if !ok || len(features) != 1 {
		t.Fatalf("Expected 1 feature, got %v", collection["features"])
	}
}
