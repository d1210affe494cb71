package models

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHOD      Role = "hod"
	RoleLecturer Role = "lecturer"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleHOD, RoleLecturer}

// ParseRole normalises a role string; ok is false for anything outside the enum.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	return role, role.Valid()
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHOD, RoleLecturer:
		return true
	}
	return false
}

// CanManageAccounts covers creating, editing, approving and deleting accounts.
func (r Role) CanManageAccounts() bool { return r == RoleAdmin }

// CanCreateTask covers assigning tasks to other accounts.
func (r Role) CanCreateTask() bool { return r == RoleAdmin || r == RoleHOD }

// CanViewAllTasks covers listing tasks regardless of assignee.
func (r Role) CanViewAllTasks() bool { return r == RoleAdmin || r == RoleHOD }

// CanManageAnyTask covers updating tasks assigned to someone else.
func (r Role) CanManageAnyTask() bool { return r == RoleAdmin }

// CanReviewLeave covers listing and deciding every leave request.
func (r Role) CanReviewLeave() bool { return r == RoleAdmin }

// CanViewFacultyReports covers downloading another account's report.
func (r Role) CanViewFacultyReports() bool { return r == RoleAdmin || r == RoleHOD }

// CanGenerateSystemReport covers the institution-wide report.
func (r Role) CanGenerateSystemReport() bool { return r == RoleAdmin }
