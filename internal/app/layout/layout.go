// Package layout picks the navigation chrome a page is rendered inside
package layout

import (
	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
)

// Chrome is the kind of navigation frame
type Chrome string

const (
	ChromeSidebar Chrome = "sidebar"
	ChromeHeader  Chrome = "header"
	ChromeMinimal Chrome = "minimal"
)

// Selector maps roles to layouts
type Selector struct {
	table *navigation.Table
}

// NewSelector creates a selector over the route table
func NewSelector(table *navigation.Table) *Selector {
	return &Selector{table: table}
}

// ChromeFor returns the chrome for role
func ChromeFor(role models.Role) Chrome {
	switch models.ParseRole(string(role)) {
	case models.RoleAdmin, models.RoleModerator:
		return ChromeSidebar
	case models.RoleStudent, models.RoleLecturer:
		return ChromeHeader
	default:
		return ChromeMinimal
	}
}

// Select builds the layout for session s
func (sel *Selector) Select(s models.Session) dto.LayoutData {
	chrome := ChromeFor(s.Role)
	if !s.IsAuthenticated || chrome == ChromeMinimal {
		return dto.LayoutData{Chrome: string(ChromeMinimal), Nav: []dto.NavItem{}}
	}

	nav := []dto.NavItem{{Label: "Dashboard", Path: sel.table.Dashboard(s.Role)}}
	for _, section := range sel.table.Sections(s.Role) {
		nav = append(nav, dto.NavItem{Label: section.Label, Path: section.Path})
	}
	return dto.LayoutData{Chrome: string(chrome), Nav: nav}
}
