package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/app/services"
	"github.com/yigit/campusportal/internal/middleware"
)

// PagesController serves the role home pages and the static sections
type PagesController struct {
	userService services.UserService
	renderer    *Renderer
	table       *navigation.Table
	sessions    middleware.SessionSource
	logger      zerolog.Logger
}

// NewPagesController creates a new PagesController
func NewPagesController(userService services.UserService, renderer *Renderer, table *navigation.Table, sessions middleware.SessionSource, logger zerolog.Logger) *PagesController {
	return &PagesController{
		userService: userService,
		renderer:    renderer,
		table:       table,
		sessions:    sessions,
		logger:      logger,
	}
}

// Home sends signed-in users to their dashboard and everyone else to login
func (c *PagesController) Home(ctx *gin.Context) {
	s := c.sessions.Snapshot()
	if !s.IsAuthenticated {
		middleware.Redirect(ctx, c.table.Login())
		return
	}
	middleware.Redirect(ctx, c.table.Dashboard(s.Role))
}

func pageName(role models.Role, section string) string {
	switch role {
	case models.RoleAdmin:
		return "admin." + section
	case models.RoleStudent:
		return "student." + section
	case models.RoleModerator:
		return "moderator." + section
	case models.RoleLecturer:
		return "lecturer." + section
	}
	return section
}

func welcome(s models.Session) dto.WelcomeData {
	greeting := "Welcome back"
	if s.User != nil && s.User.Username != "" {
		greeting += ", " + s.User.Username
	}
	return dto.WelcomeData{Greeting: greeting, Profile: s.User}
}

// Landing renders the role's home page
func (c *PagesController) Landing(role models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		s := middleware.SessionFrom(ctx, c.sessions)
		c.renderer.Render(ctx, pageName(role, "home"), welcome(s))
	}
}

// Dashboard renders the role's dashboard. The admin dashboard summarizes the
// account directory.
func (c *PagesController) Dashboard(role models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		name := pageName(role, "dashboard")
		if role != models.RoleAdmin {
			c.renderer.Render(ctx, name, welcome(middleware.SessionFrom(ctx, c.sessions)))
			return
		}

		users, err := c.userService.ListUsers(ctx.Request.Context(), services.UserQuery{})
		if c.renderer.HandleDataError(ctx, name, err) {
			return
		}

		counts := make(map[models.Role]int, len(models.Roles()))
		for _, u := range users {
			counts[models.ParseRole(u.Role)]++
		}
		data := dto.AdminDashboardData{TotalUsers: len(users)}
		for _, r := range models.Roles() {
			data.ByRole = append(data.ByRole, dto.RoleCount{Role: r, Count: counts[r]})
		}
		c.renderer.Render(ctx, name, data)
	}
}

// Forum renders the discussion board shell
func (c *PagesController) Forum(ctx *gin.Context) {
	c.renderer.Render(ctx, "forum", gin.H{"threads": []interface{}{}})
}

// Reports renders the moderation queue shell
func (c *PagesController) Reports(ctx *gin.Context) {
	c.renderer.Render(ctx, "moderator.reports", gin.H{"items": []interface{}{}})
}

// NotFound renders the generic not-found page
func (c *PagesController) NotFound(ctx *gin.Context) {
	c.renderer.RenderStatus(ctx, http.StatusNotFound, "not-found", nil)
}

// Health reports liveness and whether a session is active
func (c *PagesController) Health(ctx *gin.Context) {
	s := c.sessions.Snapshot()
	ctx.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"authenticated": s.IsAuthenticated,
	})
}
