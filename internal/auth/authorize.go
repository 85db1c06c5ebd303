package auth

import (
	"fmt"
	"slices"
	"sort"
)

// HasPermission is an exact membership test.
func HasPermission(perms []string, required string) bool {
	return slices.Contains(perms, required)
}

// HasAnyPermission reports whether perms holds at least one of required.
func HasAnyPermission(perms []string, required ...string) bool {
	for _, r := range required {
		if HasPermission(perms, r) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether perms holds every one of required.
func HasAllPermissions(perms []string, required ...string) bool {
	for _, r := range required {
		if !HasPermission(perms, r) {
			return false
		}
	}
	return true
}

// Principal represents the signed-in user with resolved permissions.
type Principal struct {
	ID          string
	Email       string
	Name        string
	Role        string
	permissions map[string]struct{}
}

// NewPrincipal constructs a principal with preloaded permissions.
func NewPrincipal(id, email, name, role string, perms []string) Principal {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return Principal{ID: id, Email: email, Name: name, Role: role, permissions: set}
}

// HasPermission reports whether the principal can execute action identified by key.
func (p Principal) HasPermission(key string) bool {
	_, ok := p.permissions[key]
	return ok
}

func (p Principal) HasAny(keys ...string) bool {
	for _, k := range keys {
		if p.HasPermission(k) {
			return true
		}
	}
	return false
}

func (p Principal) HasAll(keys ...string) bool {
	for _, k := range keys {
		if !p.HasPermission(k) {
			return false
		}
	}
	return true
}

// Permissions returns the sorted permission list.
func (p Principal) Permissions() []string {
	out := make([]string, 0, len(p.permissions))
	for k := range p.permissions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p Principal) IsSuperAdmin() bool { return p.Role == RoleSuperAdmin }

// Authenticated is false for the zero Principal.
func (p Principal) Authenticated() bool { return p.ID != "" }

// Require fails with ErrForbidden unless p holds every permission in perms.
func Require(p Principal, perms ...string) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	for _, perm := range perms {
		if !p.HasPermission(perm) {
			return fmt.Errorf("%w: missing %s", ErrForbidden, perm)
		}
	}
	return nil
}
