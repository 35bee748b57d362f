package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"levelup/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewHubRoutes(router.Group("/api/v1"), h)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestHubPublish(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Publish(model.Event{
		Type:    model.EventLevelUp,
		Class:   "Warrior",
		Payload: map[string]any{"level": 2},
		At:      now,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageEvent, msg.Type)
	require.NotNil(t, msg.Payload)
	assert.Equal(t, model.EventLevelUp, msg.Payload.Type)
	assert.Equal(t, "Warrior", msg.Payload.Class)
	assert.True(t, now.Equal(msg.Payload.At))
}

func TestHubForeground(t *testing.T) {
	h := NewHub()
	fg := &countingForeground{}
	h.SetForeground(fg)
	conn := dialHub(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"foreground"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	assert.Eventually(t, func() bool { return fg.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubClose(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Close()
	assert.Equal(t, 0, h.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// publishing without clients is a no-op
	h.Publish(model.Event{Type: model.EventTemplatesSynced, At: now})
}
