package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"formassist/internal/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*Hub, *service.AuthService, string) {
	t.Helper()
	log := zap.NewNop()
	hub := NewHub(log)
	auth := service.NewAuthService("secret")
	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, auth, log).SessionWS))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return hub, auth, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestSessionWSRejectsBadToken(t *testing.T) {
	_, _, url := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=nope", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBroadcastToSession(t *testing.T) {
	hub, auth, url := newTestServer(t)
	token, err := auth.GenerateSessionToken("s1")
	require.NoError(t, err)
	other, err := auth.GenerateSessionToken("s2")
	require.NoError(t, err)

	tab1 := dial(t, url+"?token="+token)
	tab2 := dial(t, url+"?token="+token)
	stranger := dial(t, url+"?token="+other)
	require.Eventually(t, func() bool {
		return hub.Connections("s1") == 2 && hub.Connections("s2") == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToSession("s1", service.MsgGuidanceReady, service.GuidanceReady{QuestionID: "q1", Revision: 3})

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, MsgGuidanceReady, msg.Type)

		var payload service.GuidanceReady
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "q1", payload.QuestionID)
		assert.Equal(t, int64(3), payload.Revision)
	}

	stranger.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = stranger.ReadMessage()
	assert.Error(t, err, "other sessions receive nothing")
}

func TestDisconnectSession(t *testing.T) {
	hub, auth, url := newTestServer(t)
	token, err := auth.GenerateSessionToken("s1")
	require.NoError(t, err)

	conn := dial(t, url+"?token="+token)
	require.Eventually(t, func() bool { return hub.Connections("s1") == 1 }, time.Second, 10*time.Millisecond)

	hub.DisconnectSession("s1")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "got %v", err)
	assert.Equal(t, 0, hub.Connections("s1"))
}
