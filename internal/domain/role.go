package domain

import "fmt"

// Role is the closed set of account roles. Anything outside this set is
// rejected at the boundary so downstream code can switch exhaustively.
type Role string

const (
	RoleAttendee   Role = "attendee"
	RoleOrganizer  Role = "organizer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// DefaultRole is assumed whenever a profile document is missing or unreadable.
const DefaultRole = RoleAttendee

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAttendee, RoleOrganizer, RoleAdmin, RoleSuperAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q: %w", s, ErrBadRequest)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleOrganizer, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Elevated reports whether self-registration for this role requires an
// authorization code.
func (r Role) Elevated() bool {
	return r == RoleOrganizer || r == RoleAdmin
}
