package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/app/services"
	"github.com/yigit/campusportal/internal/middleware"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// Page names rendered by AuthController
const (
	PageLogin = "login"
)

// AuthController handles sign in and sign out
type AuthController struct {
	authService services.AuthService
	renderer    *Renderer
	table       *navigation.Table
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, renderer *Renderer, table *navigation.Table, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		renderer:    renderer,
		table:       table,
		logger:      logger,
	}
}

// LoginPage renders the sign-in page
func (c *AuthController) LoginPage(ctx *gin.Context) {
	c.renderer.Render(ctx, PageLogin, nil)
}

// Login signs in with form or JSON credentials and redirects to the role's
// dashboard
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login form")
		fields := dto.FieldErrorsFromValidation(err)
		c.renderer.RenderFailure(ctx, PageLogin, apperrors.NewValidationError(fields[0].ErrorMessage))
		return
	}

	s, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		if !abandoned(ctx, err, c.logger) {
			c.renderer.RenderError(ctx, PageLogin, err)
		}
		return
	}

	middleware.Redirect(ctx, c.table.Dashboard(s.Role))
}

// Logout clears the session and returns to the login page
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.authService.Logout(); err != nil {
		middleware.HandleAPIError(ctx, c.renderer.errs.Handle(err))
		return
	}
	middleware.Redirect(ctx, c.table.Login())
}
