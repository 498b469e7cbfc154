package models

// Roles recognized across CourseDeck.
//
// RoleSuperAdmin lives in the master database and manages organizations.
// The remaining roles are per-tenant org_users roles.
const (
	RoleSuperAdmin  = "superadmin"
	RoleAdmin       = "admin"
	RoleSubOrgAdmin = "subOrgAdmin"
	RoleEducator    = "educator"
	RoleLearner     = "learner"
)

// Common status values shared by several entities.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusBlocked   = "blocked"
	StatusSuspended = "suspended"
)
