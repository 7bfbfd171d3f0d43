package worker

import (
	"context"
	"log"
	"time"

	"writedesk/models"
	"writedesk/notify"
	"writedesk/utils"

	"gorm.io/gorm"
)

// DeadlineWorker periodically reminds assignees and super admins about
// tasks whose deadline is close. Each task is reminded once; moving the
// deadline re-arms it.
type DeadlineWorker struct {
	db       *gorm.DB
	notifier *notify.Dispatcher
	logger   *log.Logger
	interval time.Duration
	window   time.Duration
}

func NewDeadlineWorker(db *gorm.DB, notifier *notify.Dispatcher, logger *log.Logger, interval, window time.Duration) *DeadlineWorker {
	return &DeadlineWorker{
		db:       db,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		window:   window,
	}
}

func (dw *DeadlineWorker) Start(ctx context.Context) {
	dw.logger.Println("Starting deadline worker...")
	ticker := time.NewTicker(dw.interval)

	for {
		select {
		case <-ticker.C:
			dw.sweep()
		case <-ctx.Done():
			dw.logger.Println("Stopping deadline worker...")
			ticker.Stop()
			return
		}
	}
}

// sweep finds unfinished, assigned tasks due inside the reminder window
// that have not yet been reminded, and fans out one reminder per task.
func (dw *DeadlineWorker) sweep() int {
	now := time.Now()
	cutoff := now.Add(dw.window)

	var tasks []models.Task
	err := dw.db.
		Where("deadline IS NOT NULL").
		Where("deadline <= ?", cutoff).
		Where("status <> ?", models.TaskStatusCompleted).
		Where("assigned_to_id IS NOT NULL").
		Where("deadline_notified_at IS NULL").
		Find(&tasks).Error
	if err != nil {
		dw.logger.Printf("Failed to fetch tasks for reminders: %v", err)
		return 0
	}

	reminded := 0
	for i := range tasks {
		task := &tasks[i]

		result := dw.notifier.Dispatch(notify.EventDeadlineReminder, task, 0, "")
		if result.Failed() {
			utils.LogError("deadline_reminder", result.Err(), map[string]interface{}{
				"task_id": task.ID,
			})
			continue
		}

		if err := dw.db.Model(task).Update("deadline_notified_at", now).Error; err != nil {
			dw.logger.Printf("Failed to stamp reminder for task %d: %v", task.ID, err)
			continue
		}
		reminded++

		// Soft failure: the persisted notification already went out
		var assignee models.User
		if err := dw.db.First(&assignee, *task.AssignedToID).Error; err == nil {
			if err := utils.SendDeadlineReminderEmail(assignee.Email, task.Title, task.Deadline); err != nil {
				dw.logger.Printf("Failed to email reminder for task %d: %v", task.ID, err)
			}
		}
	}

	if reminded > 0 {
		dw.logger.Printf("Sent %d deadline reminders", reminded)
	}
	return reminded
}
