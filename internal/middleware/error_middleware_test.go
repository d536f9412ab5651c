package middleware

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
	"github.com/yigit/campusportal/internal/pkg/httpclient"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.NewResourceNotFoundError("no such page"), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"bad request", apperrors.NewBadRequestError("file is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"forbidden", apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden},
		{"other", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
		{"normalized 400", apperrors.Normalize(&httpclient.ResponseError{StatusCode: 400, Body: []byte(`{"data":[{"errorMessage":"email is required"}]}`)}), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"normalized transport", apperrors.Normalize(&httpclient.TransportError{Err: errors.New("refused")}), http.StatusBadGateway, dto.ErrorCodeNoResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := describeError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}

	_, detail := describeError(apperrors.NewBadRequestError("file is required"))
	assert.Equal(t, "file is required", detail.Message)

	status, detail := describeError(apperrors.NewBadRequestError("file is required"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, dto.ErrorSeverityWarning, detail.Severity)

	_, detail = describeError(errors.New("boom"))
	assert.Equal(t, dto.ErrorSeverityError, detail.Severity)
}
