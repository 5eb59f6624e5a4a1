package services

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lukimgather/gather-api/internal/models"
	"gorm.io/gorm"
)

// memoryStore keeps uploads in a map, keyed by the stored reference.
type memoryStore struct {
	files map[string]string
	fail  bool
}

func (s *memoryStore) Store(name string, r io.Reader) (string, error) {
	if s.fail {
		return "", errors.New("storage unavailable")
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if s.files == nil {
		s.files = make(map[string]string)
	}
	ref := "mem://" + name
	s.files[ref] = string(content)
	return ref, nil
}

func newTestService(db *gorm.DB) *SurveyService {
	return &SurveyService{
		DB:         db,
		Media:      &memoryStore{},
		Dispatcher: &Dispatcher{DB: db, BaseURL: "https://staging.lukimgather.org"},
	}
}

func TestCreateSurveyDefaults(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title: strptr("Mangrove dieback"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if survey.Status != models.StatusPending {
		t.Errorf("Expected status pending, got %s", survey.Status)
	}
	if !survey.IsPublic {
		t.Error("Expected new survey to be public by default")
	}
	if survey.CreatedByID == nil || *survey.CreatedByID != creator.ID {
		t.Errorf("Expected creator attribution, got %v", survey.CreatedByID)
	}

	entries, err := SurveyHistory(db, survey.ID)
	if err != nil {
		t.Fatalf("SurveyHistory failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Comment != "Initial version." {
		t.Errorf("Expected a single 'Initial version.' entry, got %+v", entries)
	}
}

func TestCreateSurveyAnonymous(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), true, CreateSurveyInput{
		Title: strptr("Anonymous report"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if survey.CreatedByID != nil {
		t.Errorf("Expected anonymous survey to have no creator, got %v", survey.CreatedByID)
	}
}

func TestCreateSurveyReusesClientID(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	clientID := uuid.New()
	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{
		ID:    &clientID,
		Title: strptr("Synced from mobile"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if survey.ID != clientID {
		t.Errorf("Expected client-supplied id %s, got %s", clientID, survey.ID)
	}
}

func TestCreateSurveyAttachmentIdentityFromFilename(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	attachmentID := uuid.New()
	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title: strptr("With photo"),
		Attachments: []Upload{
			{Name: attachmentID.String(), Content: strings.NewReader("jpeg bytes")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var attachments []models.Gallery
	if err := db.Model(survey).Association("Attachments").Find(&attachments); err != nil {
		t.Fatalf("Failed to load attachments: %v", err)
	}
	if len(attachments) != 1 {
		t.Fatalf("Expected 1 attachment, got %d", len(attachments))
	}
	if attachments[0].ID != attachmentID {
		t.Errorf("Expected attachment id %s, got %s", attachmentID, attachments[0].ID)
	}
}

func TestCreateSurveyValidation(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	_, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title:       strptr("Bad improvement"),
		Improvement: strptr("skyrocketing"),
	})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("Expected a validation error, got %v", err)
	}
	if _, found := ve.Fields["improvement"]; !found {
		t.Errorf("Expected an improvement field error, got %+v", ve.Fields)
	}

	longTitle := strings.Repeat("x", 256)
	_, err = service.Create(testActor(creator), false, CreateSurveyInput{Title: &longTitle})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("Expected a validation error for long title, got %v", err)
	}
}

func TestCreateSurveyRollsBackOnStorageFailure(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	service.Media = &memoryStore{fail: true}
	creator := createTestUser(t, db, "alice@example.com")

	_, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title: strptr("Doomed"),
		Attachments: []Upload{
			{Name: "photo.jpg", Content: strings.NewReader("jpeg bytes")},
		},
	})
	if !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("Expected ErrCreateFailed, got %v", err)
	}

	var count int64
	db.Model(&models.HappeningSurvey{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no survey rows after rollback, got %d", count)
	}
	db.Model(&models.HappeningSurveyVersion{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no history rows after rollback, got %d", count)
	}
}

func TestUpdateSurveyNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	_, err := service.Update(testActor(creator), uuid.New(), UpdateSurveyInput{Title: strptr("x")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
	if err.Error() != "happening survey doesn't exist" {
		t.Errorf("Unexpected not-found message: %q", err.Error())
	}
}

func TestUpdateSurveyAuthorization(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")
	stranger := createTestUser(t, db, "mallory@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Original")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := service.Update(testActor(stranger), survey.ID, UpdateSurveyInput{Title: strptr("Hijacked")}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied for stranger, got %v", err)
	}

	if _, err := service.Update(nil, survey.ID, UpdateSurveyInput{Title: strptr("Nobody")}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Expected ErrNotAuthenticated for anonymous, got %v", err)
	}

	updated, err := service.Update(testActor(creator), survey.ID, UpdateSurveyInput{Title: strptr("Renamed")})
	if err != nil {
		t.Fatalf("Update by creator failed: %v", err)
	}
	if updated.Title == nil || *updated.Title != "Renamed" {
		t.Errorf("Expected renamed title, got %v", updated.Title)
	}
	if updated.UpdatedByID == nil || *updated.UpdatedByID != creator.ID {
		t.Errorf("Expected updated_by to be the creator, got %v", updated.UpdatedByID)
	}
}

func TestModeratorMayOnlyChangeStatus(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	moderator := models.User{Email: "mod@example.com", CanModerateSurvey: true}
	if err := db.Create(&moderator).Error; err != nil {
		t.Fatalf("Failed to create moderator: %v", err)
	}

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Pending report")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A status-only payload is allowed.
	status := models.StatusApproved
	if _, err := service.Edit(testActor(&moderator), survey.ID, UpdateSurveyInput{Status: &status}); err != nil {
		t.Fatalf("Status-only edit by moderator failed: %v", err)
	}

	// Anything beyond status is not.
	_, err = service.Edit(testActor(&moderator), survey.ID, UpdateSurveyInput{
		Status: &status,
		Title:  strptr("Touched up"),
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied for status+title payload, got %v", err)
	}
}

func TestStrangerMayNotModerate(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Pending report")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A status-only payload opens the door only for moderation-permission
	// holders; an unrelated user is refused even then.
	status := models.StatusApproved
	_, err = service.Edit(testActor(stranger), survey.ID, UpdateSurveyInput{Status: &status})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied for status-only edit by stranger, got %v", err)
	}

	var stored models.HappeningSurvey
	if err := db.First(&stored, "id = ?", survey.ID).Error; err != nil {
		t.Fatalf("Failed to reload survey: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("Expected status to remain pending, got %s", stored.Status)
	}
}

func TestProjectAdminMayEdit(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	member := createTestUser(t, db, "member@example.com")

	project := models.Project{Title: "Coastal monitoring"}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	memberships := []models.ProjectUser{
		{ProjectID: project.ID, UserID: admin.ID, IsAdmin: true},
		{ProjectID: project.ID, UserID: member.ID, IsAdmin: false},
	}
	if err := db.Create(&memberships).Error; err != nil {
		t.Fatalf("Failed to create memberships: %v", err)
	}

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title:     strptr("Project report"),
		ProjectID: uintptr64(project.ID),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := service.Update(testActor(admin), survey.ID, UpdateSurveyInput{Title: strptr("Admin edit")}); err != nil {
		t.Fatalf("Update by project admin failed: %v", err)
	}
	if _, err := service.Update(testActor(member), survey.ID, UpdateSurveyInput{Title: strptr("Member edit")}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied for non-admin member, got %v", err)
	}
}

func TestUpdateReplacesAttachmentLinks(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title: strptr("With photos"),
		Attachments: []Upload{
			{Name: "first.jpg", Content: strings.NewReader("one")},
			{Name: "second.jpg", Content: strings.NewReader("two")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var attachments []models.Gallery
	if err := db.Model(survey).Association("Attachments").Find(&attachments); err != nil {
		t.Fatalf("Failed to load attachments: %v", err)
	}
	if len(attachments) != 2 {
		t.Fatalf("Expected 2 attachments, got %d", len(attachments))
	}

	keep := []uuid.UUID{attachments[0].ID}
	if _, err := service.Update(testActor(creator), survey.ID, UpdateSurveyInput{AttachmentLinks: &keep}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	var remaining []models.Gallery
	if err := db.Model(survey).Association("Attachments").Find(&remaining); err != nil {
		t.Fatalf("Failed to reload attachments: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != attachments[0].ID {
		t.Errorf("Expected only the linked attachment to remain, got %+v", remaining)
	}
}

func TestDeleteSurvey(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")
	stranger := createTestUser(t, db, "mallory@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Short lived")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := service.Delete(testActor(stranger), survey.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Expected ErrPermissionDenied for stranger delete, got %v", err)
	}

	if err := service.Delete(testActor(creator), survey.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	err = db.First(&models.HappeningSurvey{}, "id = ?", survey.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected record gone, got %v", err)
	}

	if err := service.Delete(testActor(creator), survey.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteInternalFailureIsNotNotFound(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Doomed")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := db.Migrator().DropTable(&models.HappeningSurvey{}); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}

	err = service.Delete(testActor(creator), survey.ID)
	if err == nil {
		t.Fatal("Expected an error from delete against a broken schema")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("Internal load failure must not be reported as not-found")
	}
}

func TestStaffBypassesOwnership(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	staff := models.User{Email: "staff@example.com", IsStaff: true}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatalf("Failed to create staff user: %v", err)
	}

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Any record")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := service.Update(testActor(&staff), survey.ID, UpdateSurveyInput{
		Title:    strptr("Staff edit"),
		IsPublic: boolptr(false),
	}); err != nil {
		t.Fatalf("Update by staff failed: %v", err)
	}
}

func TestValidationFailurePersistsNothing(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Stable")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = service.Update(testActor(creator), survey.ID, UpdateSurveyInput{
		Status: strptr("published"),
	})
	if _, ok := AsValidationError(err); !ok {
		t.Fatalf("Expected a validation error for bad status, got %v", err)
	}

	var stored models.HappeningSurvey
	if err := db.First(&stored, "id = ?", survey.ID).Error; err != nil {
		t.Fatalf("Failed to reload survey: %v", err)
	}
	if stored.Status != models.StatusPending {
		t.Errorf("Expected status unchanged after failed validation, got %s", stored.Status)
	}

	entries, _ := SurveyHistory(db, survey.ID)
	if len(entries) != 1 {
		t.Errorf("Expected no new history after failed validation, got %d entries", len(entries))
	}
}

func TestFieldsProvidedNames(t *testing.T) {
	in := UpdateSurveyInput{
		Status:   strptr(models.StatusApproved),
		IsPublic: boolptr(false),
	}
	fields := in.FieldsProvided()
	if len(fields) != 2 {
		t.Fatalf("Expected 2 provided fields, got %v", fields)
	}
	want := map[string]bool{"status": true, "is_public": true}
	for _, f := range fields {
		if !want[f] {
			t.Errorf("Unexpected provided field %q", f)
		}
	}
}

func TestHistoryLabelMonotonicity(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{Title: strptr("Versioned")})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		title := fmt.Sprintf("Versioned %d", i)
		if _, err := service.Update(testActor(creator), survey.ID, UpdateSurveyInput{Title: &title}); err != nil {
			t.Fatalf("Update %d failed: %v", i, err)
		}
	}

	entries, err := SurveyHistory(db, survey.ID)
	if err != nil {
		t.Fatalf("SurveyHistory failed: %v", err)
	}
	want := []string{"Initial version.", "v1", "v2", "v3"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, label := range want {
		if entries[i].Comment != label {
			t.Errorf("Entry %d: expected %q, got %q", i, label, entries[i].Comment)
		}
	}
}

func TestRehydrateSurveyPointInTimeAttachments(t *testing.T) {
	db := setupTestDB(t)
	service := newTestService(db)
	creator := createTestUser(t, db, "alice@example.com")

	survey, err := service.Create(testActor(creator), false, CreateSurveyInput{
		Title: strptr("Snapshot test"),
		Attachments: []Upload{
			{Name: "original.jpg", Content: strings.NewReader("one")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Drop all attachments in a second revision.
	none := []uuid.UUID{}
	if _, err := service.Update(testActor(creator), survey.ID, UpdateSurveyInput{AttachmentLinks: &none}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	entries, err := SurveyHistory(db, survey.ID)
	if err != nil {
		t.Fatalf("SurveyHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	first, err := RehydrateSurvey(db, &entries[0])
	if err != nil {
		t.Fatalf("RehydrateSurvey failed: %v", err)
	}
	if len(first.Attachments) != 1 {
		t.Errorf("Expected the initial snapshot to carry 1 attachment, got %d", len(first.Attachments))
	}

	second, err := RehydrateSurvey(db, &entries[1])
	if err != nil {
		t.Fatalf("RehydrateSurvey failed: %v", err)
	}
	if len(second.Attachments) != 0 {
		t.Errorf("Expected the second snapshot to carry no attachments, got %d", len(second.Attachments))
	}
}
