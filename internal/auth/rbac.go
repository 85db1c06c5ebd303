package auth

import (
	"slices"
	"strings"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
)

// Role is a named, fixed set of permissions.
type Role struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

var roleDescriptions = map[string]string{
	RoleSuperAdmin: "Full access including user management",
	RoleAdmin:      "Full access except creating and deleting users",
	RoleEditor:     "Creates and edits content; cannot publish or delete",
	RoleViewer:     "Read-only access",
}

// Roles returns the role matrix in privilege order.
func Roles() []Role {
	names := []string{RoleSuperAdmin, RoleAdmin, RoleEditor, RoleViewer}
	out := make([]Role, 0, len(names))
	for _, name := range names {
		out = append(out, Role{Name: name, Description: roleDescriptions[name], Permissions: PermissionsForRole(name)})
	}
	return out
}

// ValidRole reports whether name is one of the fixed roles.
func ValidRole(name string) bool {
	_, ok := roleDescriptions[name]
	return ok
}

// PermissionsForRole returns a fresh, catalog-ordered slice of the permissions granted to role.
// Unknown roles get nothing.
func PermissionsForRole(role string) []string {
	var grant func(string) bool
	switch role {
	case RoleSuperAdmin:
		grant = func(string) bool { return true }
	case RoleAdmin:
		grant = func(key string) bool {
			return key != PermUsersCreate && key != PermUsersDelete
		}
	case RoleEditor:
		grant = func(key string) bool {
			return slices.Contains(editorPermissions, key)
		}
	case RoleViewer:
		grant = func(key string) bool {
			return strings.HasSuffix(key, ":view") && key != PermUsersView && key != PermAuditView
		}
	default:
		return []string{}
	}
	out := make([]string, 0, len(Catalog))
	for _, p := range Catalog {
		if grant(p.Key) {
			out = append(out, p.Key)
		}
	}
	return out
}

var editorPermissions = []string{
	PermDashboardView,
	PermLeadsView,
	PermBlogView, PermBlogCreate, PermBlogEdit,
	PermJobsView, PermJobsCreate, PermJobsEdit,
	PermApplicationsView,
	PermMediaView, PermMediaUpload,
	PermContentView, PermContentEdit,
}
