package controller

import (
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/middleware"
	"writedesk/models"
	"writedesk/notify"
)

func setupFileApp(db *gorm.DB) *fiber.App {
	logger := log.New(io.Discard, "", 0)
	dispatcher := notify.NewDispatcher(db, notify.NewHub(), logger)
	fc := NewFileController(db, dispatcher, logger)

	app := fiber.New()
	api := app.Group("/api/v1", middleware.Protected())
	api.Post("/tasks/:id/files", fc.UploadFile)
	api.Get("/tasks/:id/files", fc.GetFiles)
	api.Get("/files/:id/download", fc.DownloadFile)
	return app
}

func seedDraftFile(t *testing.T, db *gorm.DB, taskID, uploaderID uint) *models.TaskFile {
	t.Helper()
	content := []byte("draft body")
	file := models.TaskFile{
		TaskID:       taskID,
		UploadedByID: uploaderID,
		Name:         "draft-v1.docx",
		Category:     models.FileCategoryDraft,
		Size:         len(content),
		Content:      content,
	}
	if err := db.Create(&file).Error; err != nil {
		t.Fatalf("seed file: %v", err)
	}
	return &file
}

func TestFileAccessFollowsTaskVisibility(t *testing.T) {
	db := setupTestDB(t)
	app := setupFileApp(db)
	seedPortal(t, db)
	seedBlogTask(t, db)
	file := seedDraftFile(t, db, 1, 7)

	// A sales user uninvolved with the task
	outsider := seedUser(t, db, 4, models.RoleSales)

	req := jsonRequest(t, http.MethodGet, "/api/v1/tasks/1/files", nil, bearerToken(t, outsider))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider list: expected 403, got %d", resp.StatusCode)
	}

	req = jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/v1/files/%d/download", file.ID), nil, bearerToken(t, outsider))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider download: expected 403, got %d", resp.StatusCode)
	}

	encoded := base64.StdEncoding.EncodeToString([]byte("rogue upload"))
	req = jsonRequest(t, http.MethodPost, "/api/v1/tasks/1/files", fiber.Map{
		"name":     "rogue.txt",
		"category": models.FileCategoryFeedback,
		"content":  encoded,
	}, bearerToken(t, outsider))
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("outsider upload: expected 403, got %d", resp.StatusCode)
	}
}

func TestAssigneeCanDownloadFile(t *testing.T) {
	db := setupTestDB(t)
	app := setupFileApp(db)
	seedPortal(t, db)
	seedBlogTask(t, db)
	file := seedDraftFile(t, db, 1, 7)

	var writer models.User
	if err := db.First(&writer, 7).Error; err != nil {
		t.Fatalf("load writer: %v", err)
	}

	req := jsonRequest(t, http.MethodGet,
		fmt.Sprintf("/api/v1/files/%d/download", file.ID), nil, bearerToken(t, &writer))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "draft body" {
		t.Errorf("unexpected content %q", body)
	}
	if got := resp.Header.Get(fiber.HeaderContentDisposition); got == "" {
		t.Error("expected a content-disposition header")
	}
}
