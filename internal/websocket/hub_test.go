package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siege-spider/spider-backend/internal/models"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, upgrader, w, r, "analyst@example.com")
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() > 0 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func TestHub_BroadcastsMatchIngested(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	hub.NotifyMatchIngested(&models.Match{
		ID:        "m-1",
		Teams:     models.Teams{{PlayerID: "a", Team: 0}, {PlayerID: "b", Team: 1}},
		CreatedAt: created,
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string `json:"type"`
		Payload struct {
			ID    string           `json:"id"`
			Teams []map[string]int `json:"teams"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))

	assert.Equal(t, MessageTypeMatchIngested, msg.Type)
	assert.Equal(t, "m-1", msg.Payload.ID)
	assert.Equal(t, []map[string]int{{"a": 0}, {"b": 1}}, msg.Payload.Teams)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := startHub(t)
	conn := dial(t, hub)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	hub := NewHub() // Run 없이

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Broadcast("noop", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked with no running hub")
	}
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	upgrader := NewUpgrader([]string{"https://spider.example"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://spider.example")
	assert.True(t, upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, upgrader.CheckOrigin(req))
}
