package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// HandleAPIError maps an error onto a status code and the standard error response
func HandleAPIError(c *gin.Context, err error) {
	status, detail := describeError(err)
	c.JSON(status, dto.NewErrorResponse(detail))
}

// describeError picks the status and detail for err. Client errors are
// reported as warnings.
func describeError(err error) (int, *dto.ErrorDetail) {
	status, detail := classifyError(err)
	if status < http.StatusInternalServerError {
		detail.WithSeverity(dto.ErrorSeverityWarning)
	}
	return status, detail
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	var ne *apperrors.NormalizedError
	if errors.As(err, &ne) {
		return NormalizedStatus(ne), dto.NewErrorDetail(normalizedCode(ne.Kind), ne.Message).WithDetails(ne.Data)
	}

	var custom *apperrors.CustomError
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
	}
	pick := func(fallback string) string {
		if message != "" {
			return message
		}
		return fallback
	}

	switch {
	case errors.Is(err, apperrors.ErrResourceNotFound), errors.Is(err, apperrors.ErrUserNotFound), errors.Is(err, apperrors.ErrMediaNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, pick("Resource not found"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, pick("Permission denied"))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, pick("Invalid credentials"))
	case apperrors.Is(err, apperrors.ErrNotAuthenticated, apperrors.ErrTokenMissing, apperrors.ErrTokenInvalid, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, pick("Authentication required"))
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, pick("Validation failed"))
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// NormalizedStatus keeps the upstream status where there is one
func NormalizedStatus(ne *apperrors.NormalizedError) int {
	switch ne.Kind {
	case apperrors.KindNoResponse:
		return http.StatusBadGateway
	case apperrors.KindUnknown:
		return http.StatusInternalServerError
	}
	if ne.Status >= 400 && ne.Status < 600 {
		return ne.Status
	}
	return http.StatusBadGateway
}

func normalizedCode(kind apperrors.Kind) dto.ErrorCode {
	switch kind {
	case apperrors.KindUnauthorized:
		return dto.ErrorCodeSessionExpired
	case apperrors.KindForbidden:
		return dto.ErrorCodeForbidden
	case apperrors.KindValidation:
		return dto.ErrorCodeValidationFailed
	case apperrors.KindNoResponse:
		return dto.ErrorCodeNoResponse
	case apperrors.KindUnknown:
		return dto.ErrorCodeInternalServer
	default:
		return dto.ErrorCodeExternalServiceError
	}
}
