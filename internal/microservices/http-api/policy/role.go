package policy

import "fmt"

// Role is the coarse permission level stored on a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role, lowest first.
var Roles = []Role{RoleUser, RoleModerator, RoleAdmin}

// Capability is something a role may be allowed to do beyond owning content.
type Capability int

const (
	// CapModerate allows editing and removing other people's reviews and comments.
	CapModerate Capability = iota
	// CapAdminister allows managing the catalogue and user accounts.
	CapAdminister
)

// Grants is the single place where roles are turned into capabilities.
func (r Role) Grants(c Capability) bool {
	switch c {
	case CapModerate:
		return r == RoleModerator || r == RoleAdmin
	case CapAdminister:
		return r == RoleAdmin
	default:
		return false
	}
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts user input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
