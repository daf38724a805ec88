package auth

import "sort"

// RoleSet is an unordered set of role names.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from the given names, ignoring empty entries.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		if role == "" {
			continue
		}
		set[role] = struct{}{}
	}
	return set
}

// Has reports whether role is in the set.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// Len returns the number of roles.
func (s RoleSet) Len() int {
	return len(s)
}

// Intersect returns the roles present in both sets.
func (s RoleSet) Intersect(other RoleSet) RoleSet {
	out := make(RoleSet)
	for role := range s {
		if other.Has(role) {
			out[role] = struct{}{}
		}
	}
	return out
}

// Sorted returns the roles in lexical order.
func (s RoleSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for role := range s {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}

// Requirement describes what a protected operation demands of the caller.
// The zero value admits any caller with a valid token.
type Requirement struct {
	// Roles admits the caller when it holds at least one of them.
	Roles []string
	// Anonymous skips token validation entirely.
	Anonymous bool
}

// RequireRoles admits callers holding any of the given roles.
func RequireRoles(roles ...string) Requirement {
	return Requirement{Roles: roles}
}

// Authenticated admits any caller with a valid token.
func Authenticated() Requirement {
	return Requirement{}
}

// AllowAnonymous admits every caller without looking at the token.
func AllowAnonymous() Requirement {
	return Requirement{Anonymous: true}
}
