package auth

import "strings"

// Role is the closed set of identity categories. Each role owns its own
// endpoint group; a token only ever asserts one role.
type Role string

const (
	// RoleUser is a spectator account (profile, tournaments)
	RoleUser Role = "user"
	// RolePlayer owns stats, matches, training and achievements
	RolePlayer Role = "player"
	// RoleCoach manages teams, training sessions and matches
	RoleCoach Role = "coach"
	// RoleAdmin manages accounts and tournaments
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePlayer, RoleCoach, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// OwnsProfile reports whether the role has self-service profile endpoints.
func (r Role) OwnsProfile() bool {
	switch r {
	case RoleUser, RolePlayer, RoleCoach:
		return true
	case RoleAdmin:
		return false
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []Role {
	return []Role{
		RoleUser,
		RolePlayer,
		RoleCoach,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role. Matching is exact,
// "Player" is not a role.
func ParseRole(roleStr string) (Role, bool) {
	role := Role(strings.TrimSpace(roleStr))
	return role, role.IsValid()
}
