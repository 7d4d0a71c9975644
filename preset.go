package rbac

import "github.com/gatewright/rbac/types"

// stock permission actions used by the default role table
const (
	PermissionRead   = "read"
	PermissionWrite  = "write"
	PermissionDelete = "delete"
	PermissionAdmin  = "admin"
)

// stock role names
const (
	RoleViewer  = "viewer"
	RoleEditor  = "editor"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// DefaultRoles returns a fresh copy of the stock role table. Each call
// returns new values, so one engine's catalog never aliases another's.
func DefaultRoles() []types.Role {
	return []types.Role{
		{Name: RoleViewer, Permissions: []string{PermissionRead}},
		{Name: RoleEditor, Permissions: []string{PermissionRead, PermissionWrite}},
		{Name: RoleManager, Permissions: []string{PermissionRead, PermissionWrite, PermissionDelete}},
		{Name: RoleAdmin, Permissions: []string{PermissionRead, PermissionWrite, PermissionDelete, PermissionAdmin}},
	}
}
