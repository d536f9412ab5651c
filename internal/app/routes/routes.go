package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusportal/internal/app/controllers"
	"github.com/yigit/campusportal/internal/app/guard"
	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/middleware"
)

// Controllers bundles everything the portal routes dispatch to
type Controllers struct {
	Auth          *controllers.AuthController
	Pages         *controllers.PagesController
	Accounts      *controllers.AccountsController
	Media         *controllers.MediaController
	Notifications *controllers.NotificationsController
}

// SetupRouter configures all portal routes. Guards run as route middleware
// ahead of the page handlers, so a redirect aborts before any page code runs.
func SetupRouter(router *gin.Engine, table *navigation.Table, sessions middleware.SessionSource, c Controllers) error {
	middleware.UseJSONFieldNames()

	roleGuard := func(roles ...models.Role) (gin.HandlerFunc, error) {
		g, err := guard.NewRoleGuard(table, roles...)
		if err != nil {
			return nil, fmt.Errorf("route guard for %v: %w", roles, err)
		}
		return middleware.RequireRoles(sessions, g), nil
	}

	// --- Public routes ---
	router.GET("/", c.Pages.Home)
	router.GET("/health", c.Pages.Health)
	router.GET(table.NotFound(), c.Pages.NotFound)
	router.POST(navigation.LogoutPath, c.Auth.Logout)
	router.GET(navigation.NotificationsPath, c.Notifications.Drain)
	router.GET(navigation.StreamPath, c.Notifications.Stream)

	// --- Guest-only routes ---
	guest := router.Group("")
	guest.Use(middleware.GuestOnly(sessions, guard.NewGuestGuard(table)))
	{
		guest.GET(table.Login(), c.Auth.LoginPage)
		guest.POST(table.Login(), c.Auth.Login)
	}

	// --- Role home subtrees ---
	only := make(map[models.Role]gin.HandlerFunc, len(models.Roles()))
	for _, role := range models.Roles() {
		routes, ok := table.Routes(role)
		if !ok {
			return fmt.Errorf("route table has no entry for %s", role)
		}
		mw, err := roleGuard(role)
		if err != nil {
			return err
		}
		only[role] = mw

		router.GET(routes.Landing, mw, c.Pages.Landing(role))
		router.GET(routes.Dashboard, mw, c.Pages.Dashboard(role))
	}

	router.GET(navigation.AdminAccountsPath, only[models.RoleAdmin], c.Accounts.ListAccounts)
	router.GET(navigation.StudentGroupsPath, only[models.RoleStudent], c.Accounts.StudyGroups)
	router.GET(navigation.ModeratorReportsPath, only[models.RoleModerator], c.Pages.Reports)

	// --- Shared sections ---
	forum, err := roleGuard(models.RoleStudent, models.RoleModerator, models.RoleLecturer)
	if err != nil {
		return err
	}
	router.GET(navigation.ForumPath, forum, c.Pages.Forum)

	anyRole, err := roleGuard(models.Roles()...)
	if err != nil {
		return err
	}
	router.POST(navigation.MediaUploadPath, anyRole, c.Media.Upload)

	router.NoRoute(c.Pages.NotFound)
	return nil
}
