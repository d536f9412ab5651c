// Package guard decides, before a page renders, whether the current session
// may see it. Both guards are pure functions of the session and the route
// table.
package guard

import (
	"fmt"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// Decision is the outcome of a guard: render, or redirect to Redirect
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirect(path string) Decision {
	return Decision{Redirect: path}
}

// RoleSet is an allow-list of canonical roles
type RoleSet map[models.Role]struct{}

// NewRoleSet builds a set, normalizing legacy spellings
func NewRoleSet(roles ...models.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[models.ParseRole(string(r))] = struct{}{}
	}
	return set
}

// Contains reports whether role is in the set
func (s RoleSet) Contains(role models.Role) bool {
	_, ok := s[role]
	return ok
}

// Roles lists the set in canonical order
func (s RoleSet) Roles() []models.Role {
	var out []models.Role
	for _, r := range models.Roles() {
		if s.Contains(r) {
			out = append(out, r)
		}
	}
	return out
}

// RoleGuard admits authenticated sessions whose role is allowed
type RoleGuard struct {
	allowed RoleSet
	table   *navigation.Table
}

// NewRoleGuard creates a guard for a protected subtree. The allow-list must
// be non-empty and contain only recognized roles.
func NewRoleGuard(table *navigation.Table, roles ...models.Role) (*RoleGuard, error) {
	if len(roles) == 0 {
		return nil, apperrors.ErrEmptyAllowList
	}
	for _, r := range roles {
		if !models.ParseRole(string(r)).Valid() {
			return nil, fmt.Errorf("role guard: unrecognized role %q in allow-list", r)
		}
	}
	return &RoleGuard{allowed: NewRoleSet(roles...), table: table}, nil
}

// Allowed returns the guard's allow-list
func (g *RoleGuard) Allowed() RoleSet {
	return g.allowed
}

// Evaluate decides for session s
func (g *RoleGuard) Evaluate(s models.Session) Decision {
	if !s.IsAuthenticated {
		return redirect(g.table.Login())
	}

	role := models.ParseRole(string(s.Role))
	if !role.Valid() || !g.allowed.Contains(role) {
		return redirect(g.table.Landing(role))
	}
	return allow()
}

// GuestGuard admits only anonymous sessions
type GuestGuard struct {
	table *navigation.Table
}

// NewGuestGuard creates a guard for public-only pages
func NewGuestGuard(table *navigation.Table) *GuestGuard {
	return &GuestGuard{table: table}
}

// Evaluate decides for session s
func (g *GuestGuard) Evaluate(s models.Session) Decision {
	if !s.IsAuthenticated {
		return allow()
	}
	return redirect(g.table.Dashboard(s.Role))
}
