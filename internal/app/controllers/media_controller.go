package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/app/services"
	"github.com/yigit/campusportal/internal/middleware"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// MediaController proxies uploads for signed-in users
type MediaController struct {
	mediaService services.MediaService
	authService  services.AuthService
	errs         *apperrors.Normalizer
	table        *navigation.Table
	logger       zerolog.Logger
}

// NewMediaController creates a new MediaController
func NewMediaController(mediaService services.MediaService, authService services.AuthService, errs *apperrors.Normalizer, table *navigation.Table, logger zerolog.Logger) *MediaController {
	return &MediaController{
		mediaService: mediaService,
		authService:  authService,
		errs:         errs,
		table:        table,
		logger:       logger,
	}
}

// Upload forwards the multipart "file" field and returns its display URL
func (c *MediaController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		c.logger.Warn().Err(err).Msg("Upload without file field")
		middleware.HandleAPIError(ctx, c.errs.Handle(apperrors.NewValidationError("file is required")))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		middleware.HandleAPIError(ctx, c.errs.Handle(err))
		return
	}
	defer file.Close()

	uploaded, err := c.mediaService.Upload(ctx.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		if abandoned(ctx, err, c.logger) || signOutOnUnauthorized(ctx, c.authService, c.table, c.logger, err) {
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{Data: uploaded})
}
