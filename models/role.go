package models

// Role is the closed set of business roles in the portal. Every
// authorization decision in the system goes through the methods below so
// permission logic lives in one place instead of inline string checks.
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleSales       Role = "sales"
	RoleTeamLead    Role = "team_lead"
	RoleWriter      Role = "writer"
	RoleProofreader Role = "proofreader"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleSales, RoleTeamLead, RoleWriter, RoleProofreader:
		return true
	}
	return false
}

// CanCreateTasks reports whether the role may open new tasks.
func (r Role) CanCreateTasks() bool {
	switch r {
	case RoleSuperAdmin, RoleSales:
		return true
	case RoleTeamLead, RoleWriter, RoleProofreader:
		return false
	}
	return false
}

// CanAssignTasks reports whether the role may assign writers and
// proofreaders to a task.
func (r Role) CanAssignTasks() bool {
	switch r {
	case RoleSuperAdmin, RoleTeamLead:
		return true
	case RoleSales, RoleWriter, RoleProofreader:
		return false
	}
	return false
}

// CanManageUsers reports whether the role may create, update or delete
// user accounts.
func (r Role) CanManageUsers() bool {
	return r == RoleSuperAdmin
}

// CanManageTeams reports whether the role may create teams or change
// team membership.
func (r Role) CanManageTeams() bool {
	switch r {
	case RoleSuperAdmin, RoleTeamLead:
		return true
	case RoleSales, RoleWriter, RoleProofreader:
		return false
	}
	return false
}

// Assignable reports whether users holding the role may be set as the
// assignee of a task. Enforced server-side when assigning.
func (r Role) Assignable() bool {
	switch r {
	case RoleWriter, RoleProofreader:
		return true
	case RoleSuperAdmin, RoleSales, RoleTeamLead:
		return false
	}
	return false
}
