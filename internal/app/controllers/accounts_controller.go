package controllers

import (
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/services"
	"github.com/yigit/campusportal/internal/middleware"
)

// Page names rendered by AccountsController
const (
	PageAdminAccounts = "admin.accounts"
	PageStudentGroups = "student.groups"
)

// undeclaredMajor groups students without a major
const undeclaredMajor = "Undeclared"

// AccountsController serves the pages built on the account directory
type AccountsController struct {
	userService services.UserService
	renderer    *Renderer
	sessions    middleware.SessionSource
	logger      zerolog.Logger
}

// NewAccountsController creates a new AccountsController
func NewAccountsController(userService services.UserService, renderer *Renderer, sessions middleware.SessionSource, logger zerolog.Logger) *AccountsController {
	return &AccountsController{
		userService: userService,
		renderer:    renderer,
		sessions:    sessions,
		logger:      logger,
	}
}

// ListAccounts is the admin account management listing. It accepts repeated
// role filters and a free-text q; unknown roles are ignored.
func (c *AccountsController) ListAccounts(ctx *gin.Context) {
	q := services.UserQuery{Query: strings.TrimSpace(ctx.Query("q"))}
	for _, raw := range ctx.QueryArray("role") {
		if r := models.ParseRole(raw); r.Valid() {
			q.Roles = append(q.Roles, r)
		} else {
			c.logger.Debug().Str("role", raw).Msg("Ignoring unknown role filter")
		}
	}

	users, err := c.userService.ListUsers(ctx.Request.Context(), q)
	if c.renderer.HandleDataError(ctx, PageAdminAccounts, err) {
		return
	}
	c.renderer.Render(ctx, PageAdminAccounts, dto.NewUserListData(users))
}

// StudyGroups lists the signed-in student's active peers grouped by major
func (c *AccountsController) StudyGroups(ctx *gin.Context) {
	s := middleware.SessionFrom(ctx, c.sessions)

	users, err := c.userService.ListUsers(ctx.Request.Context(), services.UserQuery{
		Roles: []models.Role{models.RoleStudent},
	})
	if c.renderer.HandleDataError(ctx, PageStudentGroups, err) {
		return
	}

	c.renderer.Render(ctx, PageStudentGroups, groupByMajor(users, s.UserID))
}

func groupByMajor(users []models.User, self *int64) dto.GroupMatchData {
	byMajor := make(map[string][]models.User)
	for _, u := range users {
		if !u.IsActive || (self != nil && u.ID == *self) {
			continue
		}
		major := strings.TrimSpace(u.Major)
		if major == "" {
			major = undeclaredMajor
		}
		byMajor[major] = append(byMajor[major], u)
	}

	data := dto.GroupMatchData{Groups: make([]dto.StudyGroup, 0, len(byMajor))}
	for major, students := range byMajor {
		data.Groups = append(data.Groups, dto.StudyGroup{Major: major, Students: students})
	}
	sort.Slice(data.Groups, func(i, j int) bool {
		return data.Groups[i].Major < data.Groups[j].Major
	})
	return data
}
