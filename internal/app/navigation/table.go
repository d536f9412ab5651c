// Package navigation is the single role-to-route lookup table shared by the
// guards and the layout selector
package navigation

import (
	"github.com/yigit/campusportal/internal/app/models"
)

// Fixed portal paths
const (
	LoginPath         = "/login"
	LogoutPath        = "/logout"
	NotFoundPath      = "/not-found"
	NotificationsPath = "/notifications"
	StreamPath        = "/notifications/stream"

	AdminPath          = "/admin"
	AdminDashboardPath = "/admin/dashboard"
	AdminAccountsPath  = "/admin/accounts"

	StudentPath          = "/student"
	StudentDashboardPath = "/student/dashboard"
	StudentGroupsPath    = "/student/groups"

	ModeratorPath          = "/moderator"
	ModeratorDashboardPath = "/moderator/dashboard"
	ModeratorReportsPath   = "/moderator/reports"

	LecturerPath          = "/lecturer"
	LecturerDashboardPath = "/lecturer/dashboard"

	ForumPath       = "/forum"
	MediaUploadPath = "/media/upload"
)

// RoleRoutes are the per-role destinations: Landing is where a denied
// request goes, Dashboard is where an already signed-in visitor goes.
type RoleRoutes struct {
	Landing   string
	Dashboard string
}

// Section is a navigable subtree and the roles allowed into it
type Section struct {
	Label string
	Path  string
	Roles []models.Role
}

// Table maps canonical roles to their routes
type Table struct {
	login    string
	notFound string
	byRole   map[models.Role]RoleRoutes
	sections []Section
}

// NewTable builds a table; routes for unlisted roles resolve to notFound
func NewTable(login, notFound string, byRole map[models.Role]RoleRoutes, sections []Section) *Table {
	t := &Table{
		login:    login,
		notFound: notFound,
		byRole:   make(map[models.Role]RoleRoutes, len(byRole)),
		sections: append([]Section(nil), sections...),
	}
	for role, routes := range byRole {
		t.byRole[role] = routes
	}
	return t
}

// DefaultTable is the portal's route table
func DefaultTable() *Table {
	return NewTable(LoginPath, NotFoundPath,
		map[models.Role]RoleRoutes{
			models.RoleAdmin:     {Landing: AdminPath, Dashboard: AdminDashboardPath},
			models.RoleStudent:   {Landing: StudentPath, Dashboard: StudentDashboardPath},
			models.RoleModerator: {Landing: ModeratorPath, Dashboard: ModeratorDashboardPath},
			models.RoleLecturer:  {Landing: LecturerPath, Dashboard: LecturerDashboardPath},
		},
		[]Section{
			{Label: "Accounts", Path: AdminAccountsPath, Roles: []models.Role{models.RoleAdmin}},
			{Label: "Groups", Path: StudentGroupsPath, Roles: []models.Role{models.RoleStudent}},
			{Label: "Reports", Path: ModeratorReportsPath, Roles: []models.Role{models.RoleModerator}},
			{Label: "Forum", Path: ForumPath, Roles: []models.Role{models.RoleStudent, models.RoleModerator, models.RoleLecturer}},
		},
	)
}

// Login is the sign-in route
func (t *Table) Login() string {
	return t.login
}

// NotFound is the fallback route for unrecognized roles
func (t *Table) NotFound() string {
	return t.notFound
}

// Routes returns the routes for role. Legacy spellings are accepted.
func (t *Table) Routes(role models.Role) (RoleRoutes, bool) {
	routes, ok := t.byRole[models.ParseRole(string(role))]
	return routes, ok
}

// Landing is where a request denied by a role guard is sent
func (t *Table) Landing(role models.Role) string {
	if routes, ok := t.Routes(role); ok && routes.Landing != "" {
		return routes.Landing
	}
	return t.notFound
}

// Dashboard is where the guest guard sends a signed-in visitor
func (t *Table) Dashboard(role models.Role) string {
	if routes, ok := t.Routes(role); ok && routes.Dashboard != "" {
		return routes.Dashboard
	}
	return t.notFound
}

// Sections returns the navigable subtrees role may enter, in table order
func (t *Table) Sections(role models.Role) []Section {
	role = models.ParseRole(string(role))
	var out []Section
	for _, s := range t.sections {
		for _, r := range s.Roles {
			if r == role {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
