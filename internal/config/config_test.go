package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const portalYAML = `
api:
  base_url: http://yaml.example/api
integrations:
  media_base_url: http://yaml.example/media
  image_base_url: http://yaml.example/img
  realtime_app_key: key
  analytics_id: G-1
`

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", portalYAML)
	t.Setenv("PORTAL_API_BASE_URL", "http://env.example/api")
	t.Setenv("PORTAL_QUERY_TTL", "2m")

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)

	assert.Equal(t, "http://env.example/api", cfg.API.BaseURL)
	assert.Equal(t, "http://yaml.example/img", cfg.Integrations.ImageBaseURL)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.QueryTTL())
	assert.Equal(t, 15*time.Second, cfg.APITimeout())
	require.NoError(t, ValidatePortal(cfg))
}

func TestLoadConfig_DotEnvFillsGaps(t *testing.T) {
	const key = "PORTAL_REALTIME_APP_KEY"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", portalYAML)
	envPath := writeFile(t, dir, ".env", key+"=from-dotenv\n")

	cfg, err := LoadConfig(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Integrations.RealtimeAppKey)
}

func TestLoadConfig_MissingFilesAreSkipped(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Session.Driver)
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	t.Setenv("MOCK_API_LOGIN_BURST", "lots")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOCK_API_LOGIN_BURST")
}

func TestValidatePortal_FailsFast(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
integrations:
  media_base_url: http://ok.example
  image_base_url: not a url
  analytics_id: G-1
`)
	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)

	err = ValidatePortal(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "PORTAL_API_BASE_URL is required")
	assert.Contains(t, err.Error(), "PORTAL_IMAGE_BASE_URL must be a valid URL")
	assert.Contains(t, err.Error(), "PORTAL_REALTIME_APP_KEY is required")
}

func TestValidatePortal_BadDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", portalYAML)
	t.Setenv("PORTAL_API_TIMEOUT", "soon")

	cfg, err := LoadConfig(path, "")
	require.NoError(t, err)
	err = ValidatePortal(cfg)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "PORTAL_API_TIMEOUT")
}

func TestValidateMockAPI(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), "")
	require.NoError(t, err)

	err = ValidateMockAPI(cfg)
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")

	cfg.JWT.Secret = "s3cret"
	assert.NoError(t, ValidateMockAPI(cfg))
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL())
}
