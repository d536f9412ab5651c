package models

import "strings"

// Role defines the permission tier of a campus account
type Role string

const (
	RoleUnknown   Role = ""
	RoleAdmin     Role = "ADMIN"
	RoleStudent   Role = "STUDENT"
	RoleModerator Role = "MODERATOR"
	RoleLecturer  Role = "LECTURER"
)

// roleAliases maps every spelling the backend has used onto the canonical role.
// Keys are lower case.
var roleAliases = map[string]Role{
	"admin":     RoleAdmin,
	"student":   RoleStudent,
	"moderator": RoleModerator,
	"lecturer":  RoleLecturer,
	"lecture":   RoleLecturer,
}

// ParseRole resolves a raw role string ("ADMIN", "Admin", "Lecture", ...) into
// a canonical Role. Unrecognized values return RoleUnknown.
func ParseRole(raw string) Role {
	if role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return role
	}
	return RoleUnknown
}

// Valid reports whether r is one of the canonical roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleModerator, RoleLecturer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Roles returns the canonical roles in display order
func Roles() []Role {
	return []Role{RoleAdmin, RoleStudent, RoleModerator, RoleLecturer}
}
