package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hello ...Event) (*Hub, string) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, hello...)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var e Event
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestHub_HelloThenBroadcast(t *testing.T) {
	hub, url := newHubServer(t, NewEvent(EventSession, map[string]bool{"isAuthenticated": false}))

	a := dial(t, url)
	b := dial(t, url)
	assert.Equal(t, EventSession, readEvent(t, a).Type)
	assert.Equal(t, EventSession, readEvent(t, b).Type)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(NewEvent(EventNotification, "hello"))

	for _, conn := range []*websocket.Conn{a, b} {
		e := readEvent(t, conn)
		assert.Equal(t, EventNotification, e.Type)
		assert.Equal(t, "hello", e.Data)
	}
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, url := newHubServer(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Publishing after Close is a no-op
	hub.Publish(NewEvent(EventNotification, "late"))
}

func TestHub_ServeAfterCloseFails(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	hub.Close()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.ErrorIs(t, hub.ServeWS(w, r), ErrHubClosed)
}
