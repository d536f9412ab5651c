package mockapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/middleware"
	"github.com/yigit/campusportal/internal/pkg/auth"
	"github.com/yigit/campusportal/internal/pkg/filestorage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	jwt    *auth.JWTService
}

func newFixture(t *testing.T, burst int) *fixture {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "mock-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "mock",
	})
	media, err := filestorage.NewLocalStorage(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	h := NewHandler(DefaultDirectory(), jwtService, media, zerolog.Nop())
	limiter := middleware.NewRateLimiter(0.01, burst, zerolog.Nop())
	return &fixture{
		router: NewRouter(h, middleware.NewAuthMiddleware(jwtService), limiter, zerolog.Nop()),
		jwt:    jwtService,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(t, req)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t, 10)
	w := f.login(t, `{"email":"admin@fe-swd.com","password":"anything"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "admin", resp.Username)
	assert.Equal(t, "Admin", resp.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := f.jwt.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@fe-swd.com", claims.Email)
}

func TestLogin_LegacyLecturerSpelling(t *testing.T) {
	f := newFixture(t, 10)
	w := f.login(t, `{"email":"LECTURER@fe-swd.com","password":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Lecture", resp.Role)
	assert.Equal(t, models.RoleLecturer, models.ParseRole(resp.Role))
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t, 10)

	w := f.login(t, `{"email":"nobody@fe-swd.com","password":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.EqualValues(t, 401, decodeEnvelope(t, w)["status"])

	w = f.login(t, `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.NotEmpty(t, data)
	assert.Equal(t, "email is required", data[0].(map[string]interface{})["errorMessage"])

	w = f.login(t, `{"email":"student3@fe-swd.com","password":"x"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	f := newFixture(t, 1)
	assert.Equal(t, http.StatusOK, f.login(t, `{"email":"admin@fe-swd.com","password":"x"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.login(t, `{"email":"admin@fe-swd.com","password":"x"}`).Code)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t, 10)

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(f.login(t, `{"email":"admin@fe-swd.com","password":"x"}`).Body.Bytes(), &login))

	list := func(query string) []models.User {
		req := httptest.NewRequest(http.MethodGet, "/api/users"+query, nil)
		req.Header.Set("Authorization", "Bearer "+login.Token)
		w := f.do(t, req)
		require.Equal(t, http.StatusOK, w.Code)

		var env struct {
			Status int           `json:"status"`
			Data   []models.User `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		return env.Data
	}
	ids := func(users []models.User) []int64 {
		out := make([]int64, 0, len(users))
		for _, u := range users {
			out = append(out, u.ID)
		}
		return out
	}

	assert.Len(t, list(""), 6)
	assert.Equal(t, []int64{2, 4, 5, 6}, ids(list("?role=STUDENT&role=Lecture")))
	assert.Equal(t, []int64{2, 6}, ids(list("?role=STUDENT&q=software")))
}

func TestMediaUploadAndFetch(t *testing.T) {
	f := newFixture(t, 10)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/media/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.MediaUploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	require.NotEmpty(t, resp.Result)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/media/"+resp.Result, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/media/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/media/upload", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	assert.Equal(t, http.StatusBadRequest, f.do(t, req).Code)
}
