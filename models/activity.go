package models

import "gorm.io/gorm"

// Activity actions recorded against tasks.
const (
	ActivityTaskCreated   = "task_created"
	ActivityTaskUpdated   = "task_updated"
	ActivityTaskAssigned  = "task_assigned"
	ActivityStatusChanged = "status_changed"
	ActivityCommentAdded  = "comment_added"
	ActivityFileUploaded  = "file_uploaded"
)

// Activity is one audit-log row describing a mutation on a task.
type Activity struct {
	gorm.Model
	TaskID      uint   `gorm:"not null;index" json:"task_id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Action      string `gorm:"not null" json:"action"`
	Description string `json:"description"`

	// Relations
	Task Task `json:"-"`
	User User `json:"-"`
}
