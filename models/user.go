package models

import (
	"gorm.io/gorm"
)

// Availability states a user can report.
const (
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"
	AvailabilityAway      = "away"
)

// ValidAvailability reports whether s is a known availability state.
func ValidAvailability(s string) bool {
	switch s {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityAway:
		return true
	}
	return false
}

// User represents a portal account. Role is an immutable business
// classification; availability is self-reported.
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name string `gorm:"not null" json:"name"`
	Role Role   `gorm:"not null;index" json:"role"`

	// Availability and team membership
	Availability string `gorm:"default:'available'" json:"availability"`
	TeamID       *uint  `gorm:"index" json:"team_id,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	AssignedTasks []Task         `gorm:"foreignKey:AssignedToID" json:"assigned_tasks,omitempty"`
	CreatedTasks  []Task         `gorm:"foreignKey:AssignedByID" json:"created_tasks,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
}

// DisplayName returns the name to interpolate into notification messages.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return "Someone"
	}
	return u.Name
}
