package worker

import (
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"writedesk/config"
	"writedesk/models"
	"writedesk/notify"
)

func setupWorker(t *testing.T) (*DeadlineWorker, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	dispatcher := notify.NewDispatcher(db, notify.NewHub(), logger)
	dw := NewDeadlineWorker(db, dispatcher, logger, time.Minute, 24*time.Hour)
	return dw, db
}

func seedWorkerUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	users := []models.User{
		{Model: gorm.Model{ID: 1}, Email: "admin@agency.test", Name: "Ada Admin", Role: models.RoleSuperAdmin, IsActive: true},
		{Model: gorm.Model{ID: 7}, Email: "writer@agency.test", Name: "Wen Writer", Role: models.RoleWriter, IsActive: true},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
}

func seedDueTask(t *testing.T, db *gorm.DB, id uint, deadline time.Time, status string, assignee *uint) *models.Task {
	t.Helper()
	task := models.Task{
		Model:        gorm.Model{ID: id},
		Title:        fmt.Sprintf("Task %d", id),
		Status:       status,
		AssignedToID: assignee,
		Deadline:     &deadline,
	}
	if err := db.Create(&task).Error; err != nil {
		t.Fatalf("seed task %d: %v", id, err)
	}
	return &task
}

func ptr[T any](v T) *T { return &v }

func TestSweepRemindsDueTasks(t *testing.T) {
	dw, db := setupWorker(t)
	seedWorkerUsers(t, db)

	due := time.Now().Add(2 * time.Hour)
	seedDueTask(t, db, 1, due, models.TaskStatusInProgress, ptr(uint(7)))

	if got := dw.sweep(); got != 1 {
		t.Fatalf("expected 1 reminder, got %d", got)
	}

	// Assignee and super admin each get a persisted reminder
	var rows []models.Notification
	if err := db.Where("type = ?", string(notify.EventDeadlineReminder)).Find(&rows).Error; err != nil {
		t.Fatalf("fetch notifications: %v", err)
	}
	got := map[uint]int{}
	for _, n := range rows {
		got[n.UserID]++
	}
	if got[7] != 1 || got[1] != 1 {
		t.Errorf("expected one reminder each for users 7 and 1, got %v", got)
	}

	var task models.Task
	if err := db.First(&task, 1).Error; err != nil {
		t.Fatalf("fetch task: %v", err)
	}
	if task.DeadlineNotifiedAt == nil {
		t.Error("reminded task must be stamped")
	}
}

func TestSweepIsOncePerDeadline(t *testing.T) {
	dw, db := setupWorker(t)
	seedWorkerUsers(t, db)

	due := time.Now().Add(time.Hour)
	seedDueTask(t, db, 1, due, models.TaskStatusInProgress, ptr(uint(7)))

	if got := dw.sweep(); got != 1 {
		t.Fatalf("first sweep: expected 1, got %d", got)
	}
	if got := dw.sweep(); got != 0 {
		t.Fatalf("second sweep: expected 0, got %d", got)
	}

	var count int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", 7, string(notify.EventDeadlineReminder)).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 reminder for the assignee, got %d", count)
	}
}

func TestSweepSkipsIneligibleTasks(t *testing.T) {
	dw, db := setupWorker(t)
	seedWorkerUsers(t, db)

	soon := time.Now().Add(time.Hour)
	far := time.Now().Add(72 * time.Hour)

	seedDueTask(t, db, 1, far, models.TaskStatusInProgress, ptr(uint(7)))  // outside window
	seedDueTask(t, db, 2, soon, models.TaskStatusCompleted, ptr(uint(7))) // done
	seedDueTask(t, db, 3, soon, models.TaskStatusNew, nil)                // unassigned

	if got := dw.sweep(); got != 0 {
		t.Fatalf("expected 0 reminders, got %d", got)
	}
}

func TestSweepReArmsOnMovedDeadline(t *testing.T) {
	dw, db := setupWorker(t)
	seedWorkerUsers(t, db)

	due := time.Now().Add(time.Hour)
	task := seedDueTask(t, db, 1, due, models.TaskStatusInProgress, ptr(uint(7)))

	if got := dw.sweep(); got != 1 {
		t.Fatalf("first sweep: expected 1, got %d", got)
	}

	// Moving the deadline clears the stamp, as the update endpoint does
	newDue := time.Now().Add(90 * time.Minute)
	err := db.Model(task).Updates(map[string]interface{}{
		"deadline":             newDue,
		"deadline_notified_at": nil,
	}).Error
	if err != nil {
		t.Fatalf("move deadline: %v", err)
	}

	if got := dw.sweep(); got != 1 {
		t.Fatalf("re-armed sweep: expected 1, got %d", got)
	}
}
