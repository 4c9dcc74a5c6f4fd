package types

import "fmt"

// Role represents the authorization role of an employee
type Role string

const (
	RoleTeamMember Role = "team_member"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{
		RoleTeamMember,
		RoleManager,
		RoleAdmin,
	}
}

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleTeamMember,
		RoleManager,
		RoleAdmin:
		return true
	default:
		return false
	}
}

// Normalize returns the role, treating empty as RoleTeamMember for backward compatibility.
func (r Role) Normalize() Role {
	if r == "" {
		return RoleTeamMember
	}
	return r
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
