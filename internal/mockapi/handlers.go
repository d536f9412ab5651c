// Package mockapi is a small stand-in for the campus backend: login, the
// account directory and media uploads.
package mockapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/pkg/auth"
	"github.com/yigit/campusportal/internal/pkg/filestorage"
)

// Handler serves the backend endpoints
type Handler struct {
	directory  *Directory
	jwtService *auth.JWTService
	media      filestorage.FileStorage
	logger     zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(directory *Directory, jwtService *auth.JWTService, media filestorage.FileStorage, logger zerolog.Logger) *Handler {
	return &Handler{
		directory:  directory,
		jwtService: jwtService,
		media:      media,
		logger:     logger,
	}
}

func (h *Handler) fail(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.NewEnvelope(status, message, data))
}

// Login handles user login
// @Summary Login
// @Description Any password is accepted for a known email.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.Envelope "Missing fields, data holds field errors"
// @Failure 401 {object} dto.Envelope "Unknown email"
// @Failure 429 {object} dto.Envelope "Too many attempts"
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn().Err(err).Msg("Invalid login request payload")
		h.fail(c, http.StatusBadRequest, "invalid data", dto.FieldErrorsFromValidation(err))
		return
	}

	user, ok := h.directory.FindByEmail(req.Email)
	if !ok {
		h.logger.Warn().Str("email", req.Email).Msg("Login attempt for unknown email")
		h.fail(c, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	if !user.IsActive {
		h.logger.Warn().Int64("userID", user.ID).Msg("Login attempt for disabled account")
		h.fail(c, http.StatusForbidden, "account is disabled", nil)
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to issue tokens")
		h.fail(c, http.StatusInternalServerError, "could not issue token", nil)
		return
	}
	h.directory.Touch(user.ID, time.Now())

	h.logger.Info().Int64("userID", user.ID).Str("role", user.Role).Msg("User logged in")
	c.JSON(http.StatusOK, dto.LoginResponse{
		TokenType:    "Bearer",
		ID:           user.ID,
		Username:     user.Username,
		Role:         user.Role,
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// ListUsers returns the account directory
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query []string false "Role filter, repeatable" collectionFormat(multi)
// @Param q query string false "Free-text filter"
// @Success 200 {object} dto.Envelope{data=[]models.User}
// @Failure 401 {object} dto.Envelope
// @Router /api/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users := h.directory.List(UserFilter{
		Roles: c.QueryArray("role"),
		Query: c.Query("q"),
	})
	h.logger.Debug().Int("count", len(users)).Strs("roles", c.QueryArray("role")).Msg("Listing users")
	c.JSON(http.StatusOK, dto.NewEnvelope(http.StatusOK, "ok", users))
}

// UploadMedia stores the multipart "file" field
// @Summary Upload media
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 200 {object} dto.MediaUploadResponse
// @Failure 400 {object} dto.Envelope
// @Router /media/upload [post]
func (h *Handler) UploadMedia(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("Upload without file field")
		h.fail(c, http.StatusBadRequest, "invalid data", []dto.FieldError{{Field: "file", ErrorMessage: "file is required"}})
		return
	}

	info, err := h.media.SaveFile(file)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", file.Filename).Msg("Failed to store upload")
		h.fail(c, http.StatusInternalServerError, "could not store file", nil)
		return
	}

	c.JSON(http.StatusOK, dto.MediaUploadResponse{
		Code:    http.StatusOK,
		Message: "upload successful",
		Result:  info.ID,
	})
}

// GetMedia serves a stored file
// @Summary Fetch media
// @Tags media
// @Param id path string true "Media id"
// @Success 200 {file} binary
// @Failure 404 {object} dto.Envelope
// @Router /media/{id} [get]
func (h *Handler) GetMedia(c *gin.Context) {
	id := c.Param("id")
	if !h.media.Exists(id) {
		h.fail(c, http.StatusNotFound, "media not found", nil)
		return
	}
	path, err := h.media.GetFullPath(id)
	if err != nil {
		h.fail(c, http.StatusNotFound, "media not found", nil)
		return
	}
	c.File(path)
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
