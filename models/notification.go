package models

import "gorm.io/gorm"

// Notification is an alert persisted for exactly one recipient. Rows are
// created only by the fan-out dispatcher, mutated only by the mark-read
// endpoints, and never deleted.
type Notification struct {
	gorm.Model
	UserID        uint   `gorm:"not null;index" json:"user_id"`
	Type          string `gorm:"not null" json:"type"`
	Title         string `gorm:"not null" json:"title"`
	Message       string `json:"message"`
	TaskID        *uint  `gorm:"index" json:"task_id,omitempty"`
	TriggeredByID *uint  `json:"triggered_by_id,omitempty"`
	IsRead        bool   `gorm:"default:false;index" json:"is_read"`

	// Relations
	User        User  `json:"-"`
	Task        *Task `json:"task,omitempty"`
	TriggeredBy *User `gorm:"foreignKey:TriggeredByID" json:"triggered_by,omitempty"`
}
