package notify

import (
	"writedesk/models"

	"gorm.io/gorm"
)

// ResolveRecipients computes the set of users to notify for one event on a
// task, excluding the acting user. The result is de-duplicated by user ID:
// a team lead who is also the task's assigner appears once. actorID 0 means
// no actor (system-triggered events such as deadline reminders).
//
// Read-only: this function never writes.
func ResolveRecipients(db *gorm.DB, event Event, task *models.Task, actorID uint) ([]models.User, error) {
	switch event {
	case EventTaskCreated:
		return broadcastRecipients(db, actorID)
	case EventDeadlineReminder:
		return deadlineRecipients(db, task)
	default:
		return taskRecipients(db, task, actorID)
	}
}

// broadcastRecipients covers task creation: every super admin, team lead
// and writer except the actor.
func broadcastRecipients(db *gorm.DB, actorID uint) ([]models.User, error) {
	var users []models.User
	err := db.
		Where("role IN ?", []models.Role{models.RoleSuperAdmin, models.RoleTeamLead, models.RoleWriter}).
		Where("id <> ?", actorID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// taskRecipients covers assignment, status changes, comments and file
// uploads: all super admins, the original assigner, the assignee, and the
// lead of the assignee's team when resolvable.
func taskRecipients(db *gorm.DB, task *models.Task, actorID uint) ([]models.User, error) {
	seen := make(map[uint]struct{})
	var out []models.User

	add := func(u models.User) {
		if u.ID == actorID {
			return
		}
		if _, ok := seen[u.ID]; ok {
			return
		}
		seen[u.ID] = struct{}{}
		out = append(out, u)
	}

	var admins []models.User
	if err := db.Where("role = ?", models.RoleSuperAdmin).Find(&admins).Error; err != nil {
		return nil, err
	}
	for _, admin := range admins {
		add(admin)
	}

	if task.AssignedByID != nil {
		var assigner models.User
		if err := db.First(&assigner, *task.AssignedByID).Error; err == nil {
			add(assigner)
		}
	}

	var assignee *models.User
	if task.AssignedToID != nil {
		var u models.User
		if err := db.First(&u, *task.AssignedToID).Error; err == nil {
			assignee = &u
			add(u)
		}
	}

	// Team lead of the assignee's team, resolved through the assignee's
	// teamId and the team's lead pointer.
	if assignee != nil && assignee.TeamID != nil {
		var team models.Team
		if err := db.First(&team, *assignee.TeamID).Error; err == nil && team.TeamLeadID != nil {
			var lead models.User
			if err := db.First(&lead, *team.TeamLeadID).Error; err == nil {
				add(lead)
			}
		}
	}

	return out, nil
}

// deadlineRecipients covers reminders: the assignee unconditionally plus
// every super admin. There is no actor to exclude.
func deadlineRecipients(db *gorm.DB, task *models.Task) ([]models.User, error) {
	seen := make(map[uint]struct{})
	var out []models.User

	if task.AssignedToID != nil {
		var assignee models.User
		if err := db.First(&assignee, *task.AssignedToID).Error; err == nil {
			seen[assignee.ID] = struct{}{}
			out = append(out, assignee)
		}
	}

	var admins []models.User
	if err := db.Where("role = ?", models.RoleSuperAdmin).Find(&admins).Error; err != nil {
		return nil, err
	}
	for _, admin := range admins {
		if _, ok := seen[admin.ID]; ok {
			continue
		}
		seen[admin.ID] = struct{}{}
		out = append(out, admin)
	}

	return out, nil
}
