package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"writedesk/middleware"
	"writedesk/models"
	"writedesk/notify"
)

func setupTaskApp(db *gorm.DB) (*fiber.App, *notify.Hub) {
	hub := notify.NewHub()
	logger := log.New(io.Discard, "", 0)
	dispatcher := notify.NewDispatcher(db, hub, logger)
	tc := NewTaskController(db, dispatcher, logger)

	app := fiber.New()
	api := app.Group("/api/v1", middleware.Protected())
	tasks := api.Group("/tasks")
	tasks.Post("/", middleware.RequireRoles(models.RoleSales, models.RoleSuperAdmin), tc.CreateTask)
	tasks.Get("/", tc.GetTasks)
	tasks.Get("/:id", tc.GetTask)
	tasks.Patch("/:id/status", tc.UpdateStatus)
	tasks.Patch("/:id/assign", middleware.RequireRoles(models.RoleTeamLead, models.RoleSuperAdmin), tc.AssignTask)
	return app, hub
}

// seedPortal builds the standing cast: admin 1, sales 2, writer 7 and
// team lead 9 in team 3, proofreader 12.
func seedPortal(t *testing.T, db *gorm.DB) {
	t.Helper()
	seedUser(t, db, 1, models.RoleSuperAdmin)
	seedUser(t, db, 2, models.RoleSales)
	writer := seedUser(t, db, 7, models.RoleWriter)
	lead := seedUser(t, db, 9, models.RoleTeamLead)
	seedUser(t, db, 12, models.RoleProofreader)

	team := models.Team{Model: gorm.Model{ID: 3}, Name: "Content Team", TeamLeadID: &lead.ID}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	if err := db.Model(&models.User{}).Where("id IN ?", []uint{writer.ID, lead.ID}).
		Update("team_id", team.ID).Error; err != nil {
		t.Fatalf("attach team: %v", err)
	}
}

func seedBlogTask(t *testing.T, db *gorm.DB) *models.Task {
	t.Helper()
	task := models.Task{
		Model:        gorm.Model{ID: 1},
		Title:        "Blog Post #1",
		Status:       models.TaskStatusInProgress,
		AssignedToID: ptrUint(7),
		AssignedByID: ptrUint(2),
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return &task
}

func ptrUint(v uint) *uint { return &v }

func jsonRequest(t *testing.T, method, target string, body interface{}, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	return req
}

func notificationUserIDs(t *testing.T, db *gorm.DB, event string) map[uint]int {
	t.Helper()
	var rows []models.Notification
	if err := db.Where("type = ?", event).Find(&rows).Error; err != nil {
		t.Fatalf("fetch notifications: %v", err)
	}
	got := map[uint]int{}
	for _, n := range rows {
		got[n.UserID]++
	}
	return got
}

func TestCreateTaskNotifiesTeam(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)

	var sales models.User
	if err := db.First(&sales, 2).Error; err != nil {
		t.Fatalf("load sales: %v", err)
	}

	req := jsonRequest(t, http.MethodPost, "/api/v1/tasks", fiber.Map{
		"title":       "Landing Page Copy",
		"client_name": "Acme",
	}, bearerToken(t, &sales))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var task models.Task
	if err := db.Where("title = ?", "Landing Page Copy").First(&task).Error; err != nil {
		t.Fatalf("task not persisted: %v", err)
	}
	if task.Status != models.TaskStatusNew {
		t.Errorf("new task should start in %q, got %q", models.TaskStatusNew, task.Status)
	}
	if task.AssignedByID == nil || *task.AssignedByID != sales.ID {
		t.Errorf("creator not recorded as assigner")
	}

	// Broadcast reaches admins, leads and writers, never the creator or
	// the proofreader.
	got := notificationUserIDs(t, db, string(notify.EventTaskCreated))
	for _, want := range []uint{1, 7, 9} {
		if got[want] != 1 {
			t.Errorf("user %d: expected 1 notification, got %d", want, got[want])
		}
	}
	for _, never := range []uint{2, 12} {
		if got[never] != 0 {
			t.Errorf("user %d must not be notified, got %d", never, got[never])
		}
	}

	var activities int64
	db.Model(&models.Activity{}).
		Where("task_id = ? AND action = ?", task.ID, models.ActivityTaskCreated).Count(&activities)
	if activities != 1 {
		t.Errorf("expected 1 created activity, got %d", activities)
	}
}

func TestStatusChangeNotifiesStakeholders(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)
	seedBlogTask(t, db)

	var writer models.User
	if err := db.First(&writer, 7).Error; err != nil {
		t.Fatalf("load writer: %v", err)
	}

	req := jsonRequest(t, http.MethodPatch, "/api/v1/tasks/1/status",
		fiber.Map{"status": models.TaskStatusUnderReview}, bearerToken(t, &writer))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var task models.Task
	if err := db.First(&task, 1).Error; err != nil {
		t.Fatalf("fetch task: %v", err)
	}
	if task.Status != models.TaskStatusUnderReview {
		t.Errorf("expected status %q, got %q", models.TaskStatusUnderReview, task.Status)
	}

	got := notificationUserIDs(t, db, string(notify.EventStatusChanged))
	for _, want := range []uint{1, 2, 9} {
		if got[want] != 1 {
			t.Errorf("user %d: expected 1 notification, got %d", want, got[want])
		}
	}
	if got[writer.ID] != 0 {
		t.Errorf("the actor must not be notified about their own change, got %d", got[writer.ID])
	}
}

func TestStatusChangeRejectsUnknownValue(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)
	seedBlogTask(t, db)

	var writer models.User
	db.First(&writer, 7)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/tasks/1/status",
		fiber.Map{"status": "done"}, bearerToken(t, &writer))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var task models.Task
	db.First(&task, 1)
	if task.Status != models.TaskStatusInProgress {
		t.Errorf("status must not change on rejected value, got %q", task.Status)
	}
}

func TestAssignTaskRejectsNonAssignableRole(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)

	task := models.Task{Model: gorm.Model{ID: 1}, Title: "Whitepaper", Status: models.TaskStatusNew}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	var lead models.User
	db.First(&lead, 9)

	// Sales (id 2) cannot receive work
	req := jsonRequest(t, http.MethodPatch, "/api/v1/tasks/1/assign",
		fiber.Map{"assigned_to_id": 2}, bearerToken(t, &lead))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var check models.Task
	db.First(&check, 1)
	if check.AssignedToID != nil {
		t.Error("rejected assignment must not stick")
	}
}

func TestAssignTaskForbiddenForWriter(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)
	seedBlogTask(t, db)

	var writer models.User
	db.First(&writer, 7)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/tasks/1/assign",
		fiber.Map{"assigned_to_id": 12}, bearerToken(t, &writer))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAssignTaskMovesNewToInProgress(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)

	task := models.Task{Model: gorm.Model{ID: 1}, Title: "Case Study", Status: models.TaskStatusNew}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	var lead models.User
	db.First(&lead, 9)

	req := jsonRequest(t, http.MethodPatch, "/api/v1/tasks/1/assign",
		fiber.Map{"assigned_to_id": 7, "proofreader_id": 12}, bearerToken(t, &lead))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var check models.Task
	db.First(&check, 1)
	if check.Status != models.TaskStatusInProgress {
		t.Errorf("expected %q after assignment, got %q", models.TaskStatusInProgress, check.Status)
	}
	if check.AssignedToID == nil || *check.AssignedToID != 7 {
		t.Error("assignee not set")
	}
	if check.ProofreaderID == nil || *check.ProofreaderID != 12 {
		t.Error("proofreader not set")
	}

	got := notificationUserIDs(t, db, string(notify.EventTaskAssigned))
	if got[7] != 1 {
		t.Errorf("assignee expected 1 notification, got %d", got[7])
	}
	if got[lead.ID] != 0 {
		t.Errorf("assigning lead must not be notified, got %d", got[lead.ID])
	}
}

func TestGetTasksScopedByRole(t *testing.T) {
	db := setupTestDB(t)
	app, _ := setupTaskApp(db)
	seedPortal(t, db)
	seedBlogTask(t, db)

	// A second task outside the writer's world
	other := models.Task{
		Model:        gorm.Model{ID: 2},
		Title:        "Newsletter",
		Status:       models.TaskStatusNew,
		AssignedByID: ptrUint(1),
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}

	cases := []struct {
		userID uint
		want   int64
	}{
		{1, 2},  // super admin sees everything
		{2, 1},  // sales sees what they opened
		{7, 1},  // writer sees their assignment
		{12, 0}, // proofreader has nothing yet
	}
	for _, tc := range cases {
		var user models.User
		if err := db.First(&user, tc.userID).Error; err != nil {
			t.Fatalf("load user %d: %v", tc.userID, err)
		}
		req := jsonRequest(t, http.MethodGet, "/api/v1/tasks", nil, bearerToken(t, &user))
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request as %d: %v", tc.userID, err)
		}
		var body struct {
			Total int64 `json:"total"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode as %d: %v", tc.userID, err)
		}
		if body.Total != tc.want {
			t.Errorf("user %d: expected %d tasks, got %d", tc.userID, tc.want, body.Total)
		}
	}
}
