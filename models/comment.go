package models

import "gorm.io/gorm"

// Comment is free text attached to one task by one user. Append-only:
// there are no edit or delete operations.
type Comment struct {
	gorm.Model
	TaskID  uint   `gorm:"not null;index" json:"task_id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Content string `gorm:"type:text;not null" json:"content"`

	// Relations
	Task Task `json:"-"`
	User User `json:"-"`
}
