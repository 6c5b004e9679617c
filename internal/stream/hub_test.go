package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinyplanet-server/internal/game"
)

type fixedSource struct {
	snapshot game.Snapshot
}

func (s fixedSource) Snapshot() game.Snapshot { return s.snapshot }

type received struct {
	Type    string        `json:"type"`
	Tick    uint64        `json:"tick"`
	Payload game.Snapshot `json:"payload"`
}

func startHub(t *testing.T, source SnapshotSource) (*Hub, string, context.CancelFunc) {
	t.Helper()

	hub := NewHub(Config{WriteTimeout: time.Second, PingInterval: time.Second}, source, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	t.Cleanup(cancel)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg received
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubSendsCurrentSnapshotOnConnect(t *testing.T) {
	_, url, _ := startHub(t, fixedSource{snapshot: game.Snapshot{Tick: 9}})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	msg := readMessage(t, conn)
	assert.Equal(t, "snapshot", msg.Type)
	assert.Equal(t, uint64(9), msg.Tick)
	assert.Equal(t, uint64(9), msg.Payload.Tick)
}

func TestHubBroadcasts(t *testing.T) {
	hub, url, _ := startHub(t, nil)

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()

	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), game.Snapshot{Tick: 3}))

	assert.Equal(t, uint64(3), readMessage(t, first).Tick)
	assert.Equal(t, uint64(3), readMessage(t, second).Tick)
}

func TestHubForgetsClosedViewers(t *testing.T) {
	hub, url, _ := startHub(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishAfterStop(t *testing.T) {
	hub, _, cancel := startHub(t, nil)
	cancel()

	assert.Eventually(t, func() bool {
		return hub.Publish(context.Background(), game.Snapshot{}) == ErrHubClosed
	}, 2*time.Second, 10*time.Millisecond)
}
