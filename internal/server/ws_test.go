package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/cursor"
)

func dialOverlay(t *testing.T, hub *OverlayHub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(hub)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) overlayMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg overlayMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitForClients(t *testing.T, hub *OverlayHub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestOverlayHub_BroadcastsEffects(t *testing.T) {
	hub := NewOverlayHub()
	conn, done := dialOverlay(t, hub)
	defer done()
	waitForClients(t, hub, 1)

	cursor.Apply(hub, cursor.Show{})
	cursor.Apply(hub, cursor.Move{X: 12, Y: 34})
	cursor.Apply(hub, cursor.Click{X: 12, Y: 34})
	cursor.Apply(hub, cursor.Scroll{Delta: -100, Behavior: cursor.ScrollAuto})
	cursor.Apply(hub, cursor.Hide{})

	assert.Equal(t, overlayMessage{Type: "show"}, readMessage(t, conn))
	assert.Equal(t, overlayMessage{Type: "move", X: 12, Y: 34}, readMessage(t, conn))
	assert.Equal(t, overlayMessage{Type: "click", X: 12, Y: 34}, readMessage(t, conn))
	assert.Equal(t, overlayMessage{Type: "scroll", Delta: -100, Behavior: "auto"}, readMessage(t, conn))
	assert.Equal(t, overlayMessage{Type: "hide"}, readMessage(t, conn))
}

func TestOverlayHub_ReplaysVisibleCursor(t *testing.T) {
	hub := NewOverlayHub()
	hub.Show()
	hub.MoveTo(100, 200)

	conn, done := dialOverlay(t, hub)
	defer done()

	assert.Equal(t, overlayMessage{Type: "show"}, readMessage(t, conn))
	assert.Equal(t, overlayMessage{Type: "move", X: 100, Y: 200}, readMessage(t, conn))
}

func TestOverlayHub_NoReplayWhenHidden(t *testing.T) {
	hub := NewOverlayHub()
	hub.Show()
	hub.MoveTo(100, 200)
	hub.Hide()

	conn, done := dialOverlay(t, hub)
	defer done()
	waitForClients(t, hub, 1)

	hub.ClickAt(1, 2)
	assert.Equal(t, overlayMessage{Type: "click", X: 1, Y: 2}, readMessage(t, conn))
}

func TestOverlayHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewOverlayHub()
	conn, done := dialOverlay(t, hub)
	defer done()
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestOverlayHub_DropsSlowClients(t *testing.T) {
	hub := NewOverlayHub()
	c := &overlayClient{send: make(chan []byte, 1)}
	hub.clients[c] = struct{}{}

	hub.MoveTo(1, 1)
	hub.MoveTo(2, 2)

	assert.Zero(t, hub.Clients())
	_, open := <-c.send
	assert.True(t, open, "queued message is still delivered")
	_, open = <-c.send
	assert.False(t, open, "channel is closed after the drop")
}

func TestOverlayHub_Close(t *testing.T) {
	hub := NewOverlayHub()
	conn, done := dialOverlay(t, hub)
	defer done()
	waitForClients(t, hub, 1)

	hub.Close()

	assert.Zero(t, hub.Clients())
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
