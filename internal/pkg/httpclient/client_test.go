package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) AccessToken() (string, bool) {
	return string(s), s != ""
}

type captured struct {
	method      string
	path        string
	rawQuery    string
	contentType string
	auth        string
	body        string
}

func newCaptureServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.method = r.Method
		got.path = r.URL.Path
		got.rawQuery = r.URL.RawQuery
		got.contentType = r.Header.Get("Content-Type")
		got.auth = r.Header.Get("Authorization")
		got.body = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New("/api", nil)
	assert.Error(t, err)
}

func TestClient_GetSerializesQueryAndBearer(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"ok":true}`)
	c, err := New(srv.URL+"/", staticToken("abc"))
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), "/api/users", Params{P("a", nil), P("b", ""), P("c", "x"), P("d", []int{1, 2})})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "/api/users", got.path)
	assert.Equal(t, "c=x&d=1&d=2", got.rawQuery)
	assert.Equal(t, "Bearer abc", got.auth)
	assert.Empty(t, got.contentType)

	var out map[string]bool
	require.NoError(t, resp.Decode(&out))
	assert.True(t, out["ok"])
}

func TestClient_AnonymousWithoutToken(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c, err := New(srv.URL, staticToken(""))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "users", nil)
	require.NoError(t, err)
	assert.Empty(t, got.auth)
	assert.Equal(t, "/users", got.path)
}

func TestClient_MutatingMethodsSendJSON(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			srv, got := newCaptureServer(t, http.StatusOK, `{}`)
			c, err := New(srv.URL, nil)
			require.NoError(t, err)

			_, err = c.Do(context.Background(), Request{Method: method, Path: "/api/auth/login", Body: map[string]string{"email": "a@b.c"}})
			require.NoError(t, err)
			assert.Equal(t, JSONContentType, got.contentType)
			assert.JSONEq(t, `{"email":"a@b.c"}`, got.body)
		})
	}
}

func TestClient_MultipartBody(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{}`)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	body, err := NewMultipartBody(map[string]string{"kind": "avatar"}, FormFile{Field: "file", Filename: "me.png", Content: strings.NewReader("png-bytes")})
	require.NoError(t, err)

	_, err = c.Post(context.Background(), "/media/upload", body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.contentType, "multipart/form-data; boundary="))
	assert.Contains(t, got.body, "png-bytes")
	assert.Contains(t, got.body, `name="kind"`)
}

func TestClient_GetWithBodyIsRejected(t *testing.T) {
	c, err := New("http://localhost:1", nil)
	require.NoError(t, err)

	_, err = c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x", Body: map[string]string{}})
	require.Error(t, err)

	var respErr *ResponseError
	var transportErr *TransportError
	assert.False(t, errors.As(err, &respErr))
	assert.False(t, errors.As(err, &transportErr))
}

func TestClient_ErrorStatusPassesThrough(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnauthorized, `{"status":401,"message":"nope","data":null}`)
	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/api/users", nil)
	require.Error(t, err)

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(respErr.Body, &body))
	assert.Equal(t, "nope", body["message"])
}

func TestClient_NoResponseIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/api/users", nil)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 0, StatusCode(err))
}
