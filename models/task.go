package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses. The portal validates set membership only; it does not
// enforce a transition table, so any permitted actor may move a task to
// any status.
const (
	TaskStatusNew         = "new"
	TaskStatusInProgress  = "in_progress"
	TaskStatusUnderReview = "under_review"
	TaskStatusSubmitted   = "submitted"
	TaskStatusCompleted   = "completed"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusUnderReview,
		TaskStatusSubmitted, TaskStatusCompleted:
		return true
	}
	return false
}

// Task is one piece of writing work moving through the workflow.
type Task struct {
	gorm.Model

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Optional commercial fields
	WordCount  *int     `json:"word_count,omitempty"`
	ClientName string   `json:"client_name"`
	Budget     *float64 `json:"budget,omitempty"`

	// Workflow
	Status        string `gorm:"default:'new';index" json:"status"`
	AssignedToID  *uint  `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedByID  *uint  `gorm:"index" json:"assigned_by_id,omitempty"`
	ProofreaderID *uint  `json:"proofreader_id,omitempty"`

	// Dates
	Deadline           *time.Time `json:"deadline,omitempty"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	DeadlineNotifiedAt *time.Time `json:"deadline_notified_at,omitempty"`

	// Relations
	AssignedTo  *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	AssignedBy  *User      `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
	Proofreader *User      `gorm:"foreignKey:ProofreaderID" json:"proofreader,omitempty"`
	Files       []TaskFile `gorm:"foreignKey:TaskID" json:"files,omitempty"`
	Comments    []Comment  `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
	Activities  []Activity `gorm:"foreignKey:TaskID" json:"activities,omitempty"`
}
