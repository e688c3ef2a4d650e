package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func staticVerifier(tokens map[string]string) TokenVerifier {
	return func(ctx context.Context, token string) (string, error) {
		if id, ok := tokens[token]; ok {
			return id, nil
		}
		return "", errors.New("bad token")
	}
}

func newWSServer(t *testing.T, h *Hub, opts HandlerOptions) string {
	t.Helper()
	r := gin.New()
	r.GET("/ws", h.Handler(staticVerifier(map[string]string{"tok-u1": "u1"}), opts))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env Envelope
	require.NoError(t, ws.ReadJSON(&env))
	return env
}

func join(t *testing.T, ws *websocket.Conn, userID string) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(map[string]any{"event": EventJoinUserRoom, "data": userID}))
	env := readEnvelope(t, ws)
	require.Equal(t, EventRoomJoined, env.Event)
}

func TestHandler_JoinAndReceive(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{PingInterval: time.Second})

	a := dial(t, url)
	b := dial(t, url)
	join(t, a, "u1")
	join(t, b, "u1")

	require.Eventually(t, func() bool { return h.RoomSize("u1") == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, h.Publish(context.Background(), "u1", TaskDeleted{ID: "t1"}))

	for _, ws := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, ws)
		assert.Equal(t, EventTaskDelete, env.Event)
		var id string
		require.NoError(t, json.Unmarshal(env.Data, &id))
		assert.Equal(t, "t1", id)
	}
}

func TestHandler_UnknownEventIgnored(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{})

	ws := dial(t, url)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"event":"dance","data":1}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	join(t, ws, "u9")
}

func TestHandler_JoinObjectPayload(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{})

	ws := dial(t, url)
	require.NoError(t, ws.WriteJSON(map[string]any{"event": EventJoinUserRoom, "data": map[string]string{"userId": "u5"}}))
	env := readEnvelope(t, ws)
	assert.Equal(t, EventRoomJoined, env.Event)
	assert.JSONEq(t, `{"userId":"u5","room":"user_u5"}`, string(env.Data))
}

func TestHandler_DisconnectLeavesRoom(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{})

	ws := dial(t, url)
	join(t, ws, "u1")
	require.Equal(t, 1, h.RoomSize("u1"))

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	_ = ws.Close()

	require.Eventually(t, func() bool { return h.RoomSize("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_TokenBindsRoom(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{RequireToken: true})

	ws := dial(t, url+"?token=tok-u1")
	require.NoError(t, ws.WriteJSON(map[string]any{"event": EventJoinUserRoom, "data": "u2"}))
	join(t, ws, "u1")
	assert.Equal(t, 0, h.RoomSize("u2"))
	assert.Equal(t, 1, h.RoomSize("u1"))
}

func TestHandler_RejectsBadOrMissingToken(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{RequireToken: true})

	for _, u := range []string{url, url + "?token=nope"} {
		_, resp, err := websocket.DefaultDialer.Dial(u, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestHandler_RejectsForeignOrigin(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{AllowedOrigin: "http://app.local"})

	hdr := http.Header{"Origin": {"http://evil.local"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_ = resp.Body.Close()

	hdr = http.Header{"Origin": {"http://app.local"}}
	ws, resp, err := websocket.DefaultDialer.Dial(url, hdr)
	require.NoError(t, err)
	_ = resp.Body.Close()
	_ = ws.Close()
}

func TestHandler_HubCloseDisconnectsSockets(t *testing.T) {
	h := newTestHub(t)
	url := newWSServer(t, h, HandlerOptions{})

	ws := dial(t, url)
	join(t, ws, "u1")

	h.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := ws.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}
