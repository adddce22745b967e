package overlay

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/wayfinder/internal/indicator"
	"github.com/udisondev/wayfinder/internal/nav"
	"github.com/udisondev/wayfinder/internal/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	w := testutil.TwoRoomWorld(t)
	svc := indicator.NewService(testutil.Graph(t, w), w.Subscribe(), indicator.Config{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	srv := httptest.NewServer(NewHandler(svc, nil))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	u.Scheme = "ws"
	u.RawQuery = url.Values{"id": {id}}.Encode()

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, ok func(map[string]any) bool) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if ok(msg) {
			return msg
		}
	}
}

func TestHandler_StreamsFrames(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "farmer")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypePosition, Location: "A", X: 0, Y: 1}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypeTargets, Targets: []TargetMessage{{Location: "B", X: 4, Y: 1}}}))

	msg := readUntil(t, conn, func(m map[string]any) bool { return m["found"] == true })
	assert.Equal(t, TypeFrame, msg["type"])
	assert.Equal(t, "E", msg["arrow"])
	assert.InDelta(t, 8.0, msg["distance"], 1e-9)

	hop, ok := msg["next_hop"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A", hop["location"])
	assert.InDelta(t, 4.0, hop["x"], 0)
}

func TestHandler_UnreachableOmitsDistance(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "farmer")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: TypePosition, Location: "A", X: 0, Y: 1}))

	msg := readUntil(t, conn, func(m map[string]any) bool { return m["type"] == TypeFrame })
	assert.Equal(t, false, msg["found"])
	assert.NotContains(t, msg, "distance")
	assert.Equal(t, "none", msg["arrow"])
}

func TestHandler_RejectsUnknownMessage(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "farmer")

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "teleport"}))

	msg := readUntil(t, conn, func(m map[string]any) bool { return m["type"] == TypeError })
	assert.Contains(t, msg["error"], "teleport")
}

func TestHandler_MissingID(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_DuplicateID(t *testing.T) {
	srv := newServer(t)
	first := dial(t, srv, "farmer")
	require.NoError(t, first.WriteJSON(ClientMessage{Type: TypePosition, Location: "A", X: 0, Y: 1}))
	readUntil(t, first, func(m map[string]any) bool { return m["type"] == TypeFrame })

	second := dial(t, srv, "farmer")
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()

	var ce *websocket.CloseError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, websocket.ClosePolicyViolation, ce.Code)
	assert.True(t, strings.Contains(ce.Text, "already registered"))
}

func TestFrameMessage(t *testing.T) {
	lost := frameMessage(indicator.Frame{Distance: nav.Unreachable, Version: 3})
	assert.Nil(t, lost.Distance)
	assert.Nil(t, lost.Target)
	assert.Equal(t, "none", lost.Arrow)

	found := frameMessage(indicator.Frame{
		Found:    true,
		Target:   indicator.Target{Location: "B", X: 1, Y: 2},
		Distance: math.Sqrt2,
		Arrow:    nav.SouthWest,
		Portal:   "warp",
	})
	require.NotNil(t, found.Distance)
	assert.InDelta(t, math.Sqrt2, *found.Distance, 1e-12)
	assert.Equal(t, "SW", found.Arrow)
	assert.Equal(t, &TargetMessage{Location: "B", X: 1, Y: 2}, found.Target)
}
