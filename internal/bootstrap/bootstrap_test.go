package bootstrap

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusportal/internal/app/models"
	"github.com/yigit/campusportal/internal/app/models/dto"
	"github.com/yigit/campusportal/internal/app/navigation"
	"github.com/yigit/campusportal/internal/app/session"
	"github.com/yigit/campusportal/internal/config"
	"github.com/yigit/campusportal/internal/pkg/apperrors"
	"github.com/yigit/campusportal/internal/pkg/logger"
	"github.com/yigit/campusportal/internal/pkg/realtime"
)

type page struct {
	Page    string              `json:"page"`
	Layout  dto.LayoutData      `json:"layout"`
	Session models.Session      `json:"session"`
	Data    json.RawMessage     `json:"data"`
	Error   *dto.NormalizedData `json:"error"`
	Client  *dto.ClientConfig   `json:"client"`
}

type portalFixture struct {
	portal  *Portal
	router  *gin.Engine
	backend *httptest.Server
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	logger.Configure(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), "")
	require.NoError(t, err)
	cfg.Server.Mode = "production"
	cfg.MockAPI.StoragePath = t.TempDir()
	cfg.MockAPI.LoginRPS = 1000
	cfg.MockAPI.LoginBurst = 1000
	cfg.JWT.Secret = "bootstrap-test"
	require.NoError(t, config.ValidateMockAPI(cfg))

	mock, err := BuildMockAPI(cfg, logger.Default())
	require.NoError(t, err)
	backend := httptest.NewServer(mock)
	t.Cleanup(backend.Close)

	cfg.API.BaseURL = backend.URL + "/api"
	cfg.Integrations.MediaBaseURL = backend.URL + "/media"
	cfg.Integrations.ImageBaseURL = backend.URL + "/media"
	cfg.Integrations.RealtimeAppKey = "rt-key"
	cfg.Integrations.AnalyticsID = "G-TEST"
	cfg.Session.Driver = "memory"
	require.NoError(t, config.ValidatePortal(cfg))

	p, err := BuildPortal(cfg, logger.Default())
	require.NoError(t, err)
	t.Cleanup(p.Close)
	router, err := SetupPortalRouter(cfg, p)
	require.NoError(t, err)

	return &portalFixture{portal: p, router: router, backend: backend}
}

func (f *portalFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *portalFixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *portalFixture) login(email, password string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, navigation.LoginPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

type toast struct {
	Message string      `json:"message"`
	Detail  interface{} `json:"detail"`
}

func (f *portalFixture) drain(t *testing.T) []toast {
	t.Helper()
	w := f.get(navigation.NotificationsPath)
	require.Equal(t, http.StatusOK, w.Code)
	var drained struct {
		Data []toast `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &drained))
	return drained.Data
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) page {
	t.Helper()
	var p page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

func TestPortal_AdminJourney(t *testing.T) {
	f := newPortalFixture(t)

	w := f.get(navigation.AdminDashboardPath)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, navigation.LoginPath, w.Header().Get("Location"))

	w = f.login("admin@fe-swd.com", "whatever")
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, navigation.AdminDashboardPath, w.Header().Get("Location"))

	w = f.get(navigation.AdminDashboardPath)
	require.Equal(t, http.StatusOK, w.Code)
	p := decodePage(t, w)
	assert.Equal(t, "admin.dashboard", p.Page)
	assert.Equal(t, "sidebar", p.Layout.Chrome)
	assert.Equal(t, models.RoleAdmin, p.Session.Role)
	require.NotNil(t, p.Client)
	assert.Equal(t, "rt-key", p.Client.RealtimeAppKey)

	var dash dto.AdminDashboardData
	require.NoError(t, json.Unmarshal(p.Data, &dash))
	assert.Equal(t, 6, dash.TotalUsers)

	w = f.get(navigation.AdminAccountsPath + "?role=Student&q=software")
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.UserListData
	require.NoError(t, json.Unmarshal(decodePage(t, w).Data, &list))
	assert.Equal(t, 2, list.Total)

	// Authenticated users never see the login page
	w = f.get(navigation.LoginPath)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, navigation.AdminDashboardPath, w.Header().Get("Location"))

	w = f.get(navigation.StudentGroupsPath)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, navigation.AdminPath, w.Header().Get("Location"))

	w = f.do(httptest.NewRequest(http.MethodPost, navigation.LogoutPath, nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.LoginPath, w.Header().Get("Location"))
	assert.False(t, f.portal.Store.Snapshot().IsAuthenticated)

	w = f.get(navigation.AdminPath)
	assert.Equal(t, navigation.LoginPath, w.Header().Get("Location"))
}

func TestPortal_LoginFailuresAreNormalized(t *testing.T) {
	f := newPortalFixture(t)

	w := f.login("ghost@fe-swd.com", "x")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	p := decodePage(t, w)
	require.NotNil(t, p.Error)
	assert.Equal(t, string(apperrors.KindUnauthorized), p.Error.Kind)
	assert.Equal(t, apperrors.MsgSessionExpired, p.Error.Message)
	assert.Equal(t, "minimal", p.Layout.Chrome)

	w = f.login("admin@fe-swd.com", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	p = decodePage(t, w)
	require.NotNil(t, p.Error)
	assert.Equal(t, apperrors.MsgInvalidData, p.Error.Message)
	assert.Equal(t, "password is required", p.Error.Data)

	toasts := f.drain(t)
	require.Len(t, toasts, 2)
	assert.Equal(t, apperrors.MsgSessionExpired, toasts[0].Message)
	assert.Equal(t, apperrors.MsgInvalidData, toasts[1].Message)
	assert.Equal(t, "password is required", toasts[1].Detail)
}

func TestPortal_RejectedTokenSignsOut(t *testing.T) {
	f := newPortalFixture(t)
	require.NoError(t, f.portal.Store.Login(models.RoleAdmin, session.Identity{UserID: 1, AccessToken: "not-a-real-token"}))

	w := f.get(navigation.AdminAccountsPath)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, navigation.LoginPath, w.Header().Get("Location"))
	assert.False(t, f.portal.Store.Snapshot().IsAuthenticated)
	_, ok := f.portal.Store.AccessToken()
	assert.False(t, ok)
}

func TestPortal_StudentGroups(t *testing.T) {
	f := newPortalFixture(t)
	w := f.login("student@fe-swd.com", "x")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, navigation.StudentDashboardPath, w.Header().Get("Location"))

	w = f.get(navigation.StudentGroupsPath)
	require.Equal(t, http.StatusOK, w.Code)
	p := decodePage(t, w)
	assert.Equal(t, "header", p.Layout.Chrome)

	var groups dto.GroupMatchData
	require.NoError(t, json.Unmarshal(p.Data, &groups))
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, "Artificial Intelligence", groups.Groups[0].Major)
	require.Len(t, groups.Groups[0].Students, 1)
	assert.Equal(t, "student2", groups.Groups[0].Students[0].Username)

	assert.Equal(t, http.StatusOK, f.get(navigation.ForumPath).Code)
	assert.Equal(t, navigation.StudentPath, f.get(navigation.ModeratorReportsPath).Header().Get("Location"))
}

func TestPortal_MediaUpload(t *testing.T) {
	f := newPortalFixture(t)
	require.Equal(t, http.StatusSeeOther, f.login("lecturer@fe-swd.com", "x").Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "slides.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("slide"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, navigation.MediaUploadPath, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data dto.UploadedMedia `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, f.backend.URL+"/media/"+resp.Data.ImageID, resp.Data.DisplayURL)
}

func TestPortal_UploadWithoutFileIsNotified(t *testing.T) {
	f := newPortalFixture(t)
	require.Equal(t, http.StatusSeeOther, f.login("student@fe-swd.com", "x").Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("caption", "no file here"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, navigation.MediaUploadPath, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "file is required", resp.Error.Details)

	toasts := f.drain(t)
	require.Len(t, toasts, 1)
	assert.Equal(t, apperrors.MsgInvalidData, toasts[0].Message)
	assert.Equal(t, "file is required", toasts[0].Detail)
}

func TestPortal_NotFound(t *testing.T) {
	f := newPortalFixture(t)
	w := f.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not-found", decodePage(t, w).Page)
}

func TestPortal_StreamPublishesSessionChanges(t *testing.T) {
	f := newPortalFixture(t)
	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+navigation.StreamPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	type sessionEvent struct {
		Type string         `json:"type"`
		Data models.Session `json:"data"`
	}
	next := func() sessionEvent {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var e sessionEvent
		require.NoError(t, conn.ReadJSON(&e))
		return e
	}

	hello := next()
	assert.Equal(t, realtime.EventSession, hello.Type)
	assert.False(t, hello.Data.IsAuthenticated)
	require.Eventually(t, func() bool { return f.portal.Hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusSeeOther, f.login("moderator@fe-swd.com", "x").Code)
	changed := next()
	assert.Equal(t, realtime.EventSession, changed.Type)
	assert.True(t, changed.Data.IsAuthenticated)
	assert.Equal(t, models.RoleModerator, changed.Data.Role)
}

func TestLoadConfigAndSetupLogger_FailsFast(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))

	_, _, err := LoadConfigAndSetupLogger(config.ValidatePortal)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
}
