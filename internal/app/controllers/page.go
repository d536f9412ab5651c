// Package controllers renders portal pages as JSON page descriptors
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/layout"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/app/services"
	"github.com/yigit/campusportal/internal/app/session"
	"github.com/yigit/campusportal/internal/middleware"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// Renderer builds page descriptors for the current session
type Renderer struct {
	sessions *session.Store
	layouts  *layout.Selector
	table    *navigation.Table
	auth     services.AuthService
	errs     *apperrors.Normalizer
	client   dto.ClientConfig
	logger   zerolog.Logger
}

// NewRenderer creates a Renderer
func NewRenderer(
	sessions *session.Store,
	layouts *layout.Selector,
	table *navigation.Table,
	auth services.AuthService,
	errs *apperrors.Normalizer,
	client dto.ClientConfig,
	logger zerolog.Logger,
) *Renderer {
	return &Renderer{
		sessions: sessions,
		layouts:  layouts,
		table:    table,
		auth:     auth,
		errs:     errs,
		client:   client,
		logger:   logger,
	}
}

func (r *Renderer) page(c *gin.Context, name string, data interface{}) dto.PageResponse {
	s := middleware.SessionFrom(c, r.sessions)
	resp := dto.NewPageResponse(name, r.layouts.Select(s), s, data)
	client := r.client
	resp.Client = &client
	return resp
}

// Render writes a 200 page descriptor
func (r *Renderer) Render(c *gin.Context, name string, data interface{}) {
	c.JSON(http.StatusOK, r.page(c, name, data))
}

// RenderStatus writes a page descriptor with an explicit status
func (r *Renderer) RenderStatus(c *gin.Context, status int, name string, data interface{}) {
	c.JSON(status, r.page(c, name, data))
}

// RenderError writes the page with the normalized error attached
func (r *Renderer) RenderError(c *gin.Context, name string, err error) {
	ne := apperrors.Normalize(err)
	resp := r.page(c, name, nil)
	resp.Error = &dto.NormalizedData{
		Kind:    string(ne.Kind),
		Status:  ne.Status,
		Message: ne.Message,
		Data:    ne.Data,
	}
	c.JSON(middleware.NormalizedStatus(ne), resp)
}

// RenderFailure notifies the user of a failure raised by the portal itself
// and renders the page with it
func (r *Renderer) RenderFailure(c *gin.Context, name string, err error) {
	r.RenderError(c, name, r.errs.Handle(err))
}

// HandleDataError deals with a failed backend read. A 401 signs the session
// out and sends the user to the login page; anything else renders the page
// with the error. It reports whether it wrote a response.
func (r *Renderer) HandleDataError(c *gin.Context, name string, err error) bool {
	if err == nil {
		return false
	}
	if abandoned(c, err, r.logger) {
		return true
	}
	if signOutOnUnauthorized(c, r.auth, r.table, r.logger, err) {
		return true
	}
	r.RenderError(c, name, err)
	return true
}

// abandoned reports whether err only says the client went away. Nothing is
// written for such requests.
func abandoned(c *gin.Context, err error, logger zerolog.Logger) bool {
	if c.Request.Context().Err() == nil {
		return false
	}
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	logger.Debug().Str("path", c.Request.URL.Path).Msg("Client went away, dropping response")
	c.Abort()
	return true
}

// signOutOnUnauthorized logs the session out and redirects to login when the
// backend answered 401
func signOutOnUnauthorized(c *gin.Context, auth services.AuthService, table *navigation.Table, logger zerolog.Logger, err error) bool {
	var ne *apperrors.NormalizedError
	if !errors.As(err, &ne) || ne.Kind != apperrors.KindUnauthorized {
		return false
	}

	logger.Info().Str("path", c.Request.URL.Path).Msg("Backend rejected the session, signing out")
	if logoutErr := auth.Logout(); logoutErr != nil {
		logger.Error().Err(logoutErr).Msg("Failed to sign out after 401")
	}
	middleware.Redirect(c, table.Login())
	return true
}
