package models

import "gorm.io/gorm"

// File categories. Labels only: they drive UI grouping, not access control.
const (
	FileCategoryInstruction = "instruction"
	FileCategoryDraft       = "draft"
	FileCategoryFinal       = "final"
	FileCategoryFeedback    = "feedback"
)

// ValidFileCategory reports whether s is a known file category.
func ValidFileCategory(s string) bool {
	switch s {
	case FileCategoryInstruction, FileCategoryDraft, FileCategoryFinal, FileCategoryFeedback:
		return true
	}
	return false
}

// TaskFile is a file attached to exactly one task, content stored inline.
type TaskFile struct {
	gorm.Model
	TaskID       uint   `gorm:"not null;index" json:"task_id"`
	UploadedByID uint   `gorm:"not null;index" json:"uploaded_by_id"`
	Name         string `gorm:"not null" json:"name"`
	Category     string `gorm:"default:'draft'" json:"category"`
	ContentType  string `json:"content_type"`
	Size         int    `json:"size"`
	Content      []byte `gorm:"type:bytea" json:"-"`

	// Relations
	Task       Task `json:"-"`
	UploadedBy User `json:"-"`
}
