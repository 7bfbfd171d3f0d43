package models

import "testing"

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role        Role
		createTasks bool
		assignTasks bool
		manageUsers bool
		manageTeams bool
		assignable  bool
	}{
		{RoleSuperAdmin, true, true, true, true, false},
		{RoleSales, true, false, false, false, false},
		{RoleTeamLead, false, true, false, true, false},
		{RoleWriter, false, false, false, false, true},
		{RoleProofreader, false, false, false, false, true},
	}

	for _, tc := range cases {
		if got := tc.role.CanCreateTasks(); got != tc.createTasks {
			t.Errorf("%s.CanCreateTasks() = %v, want %v", tc.role, got, tc.createTasks)
		}
		if got := tc.role.CanAssignTasks(); got != tc.assignTasks {
			t.Errorf("%s.CanAssignTasks() = %v, want %v", tc.role, got, tc.assignTasks)
		}
		if got := tc.role.CanManageUsers(); got != tc.manageUsers {
			t.Errorf("%s.CanManageUsers() = %v, want %v", tc.role, got, tc.manageUsers)
		}
		if got := tc.role.CanManageTeams(); got != tc.manageTeams {
			t.Errorf("%s.CanManageTeams() = %v, want %v", tc.role, got, tc.manageTeams)
		}
		if got := tc.role.Assignable(); got != tc.assignable {
			t.Errorf("%s.Assignable() = %v, want %v", tc.role, got, tc.assignable)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleSales, RoleTeamLead, RoleWriter, RoleProofreader} {
		if !role.Valid() {
			t.Errorf("%s should be valid", role)
		}
	}
	for _, role := range []Role{"", "admin", "manager", "SUPER_ADMIN"} {
		if role.Valid() {
			t.Errorf("%q should not be valid", role)
		}
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, status := range []string{
		TaskStatusNew, TaskStatusInProgress, TaskStatusUnderReview,
		TaskStatusSubmitted, TaskStatusCompleted,
	} {
		if !ValidTaskStatus(status) {
			t.Errorf("%q should be a valid status", status)
		}
	}
	for _, status := range []string{"", "done", "open", "In_Progress"} {
		if ValidTaskStatus(status) {
			t.Errorf("%q should not be a valid status", status)
		}
	}
}
