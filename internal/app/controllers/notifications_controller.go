package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/middleware"
	"github.com/yigit/campusportal/internal/pkg/notify"
	"github.com/yigit/campusportal/internal/pkg/realtime"
)

// NotificationsController drains the toast tray and serves the realtime stream
type NotificationsController struct {
	tray     *notify.Tray
	hub      *realtime.Hub
	sessions middleware.SessionSource
	logger   zerolog.Logger
}

// NewNotificationsController creates a new NotificationsController
func NewNotificationsController(tray *notify.Tray, hub *realtime.Hub, sessions middleware.SessionSource, logger zerolog.Logger) *NotificationsController {
	return &NotificationsController{
		tray:     tray,
		hub:      hub,
		sessions: sessions,
		logger:   logger,
	}
}

// Drain returns pending notifications oldest first; each is returned once
func (c *NotificationsController) Drain(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: c.tray.Drain()})
}

// Stream upgrades to a WebSocket that first receives the current session,
// then every session change and notification
func (c *NotificationsController) Stream(ctx *gin.Context) {
	hello := realtime.NewEvent(realtime.EventSession, c.sessions.Snapshot())
	if err := c.hub.ServeWS(ctx.Writer, ctx.Request, hello); err != nil {
		if errors.Is(err, realtime.ErrHubClosed) {
			ctx.JSON(http.StatusServiceUnavailable, dto.NewEnvelope(http.StatusServiceUnavailable, "realtime stream unavailable", nil))
			return
		}
		// The upgrader has already answered the request
		c.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
	}
}
