package models

import "gorm.io/gorm"

// Team groups writers and proofreaders under at most one lead. Members
// reference the team through User.TeamID.
type Team struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	TeamLeadID  *uint  `gorm:"index" json:"team_lead_id,omitempty"`

	// Relations
	TeamLead *User  `gorm:"foreignKey:TeamLeadID" json:"team_lead,omitempty"`
	Members  []User `gorm:"foreignKey:TeamID" json:"members,omitempty"`
}
