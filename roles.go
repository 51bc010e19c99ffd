package auth

import "strings"

// Role is the platform-wide user role. Exactly four roles exist; anything
// else fails validation and is denied by the policy layer.
type Role string

const (
	// RoleGuest can view public campus content only
	RoleGuest Role = "guest"
	// RoleStudent is an enrolled student (courses, messaging, meetings)
	RoleStudent Role = "student"
	// RoleFaculty is teaching staff (course management on top of student access)
	RoleFaculty Role = "faculty"
	// RoleAdmin is platform administration (user management, all dashboards)
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleStudent, RoleFaculty, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleGuest:   0,
		RoleStudent: 1,
		RoleFaculty: 2,
		RoleAdmin:   3,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// AllRoles returns all predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{
		RoleGuest,
		RoleStudent,
		RoleFaculty,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(strings.TrimSpace(roleStr))
	return role, role.IsValid()
}

// RoleSet is a static access rule: the set of roles permitted to perform an
// operation. Rules are defined at wiring time and never mutated afterwards.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from the given roles, dropping invalid entries.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.IsValid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the role is part of the set.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}

// Roles returns the member roles in hierarchical order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(s))
	for _, r := range s.Roles() {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}
