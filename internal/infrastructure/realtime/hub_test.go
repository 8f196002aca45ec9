package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// startServer serves the hub on a test server; the user id comes from the "user" query param.
func startServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(context.Background(), userID, conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections() == n }, 2*time.Second, 10*time.Millisecond)
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestHub_SendToUser(t *testing.T) {
	var gauge atomic.Int64
	hub := NewHub(zaptest.NewLogger(t), WithConnectionGauge(func(n int) { gauge.Store(int64(n)) }))
	srv := startServer(t, hub)

	alice, bob := uuid.New(), uuid.New()
	aliceConn := dial(t, srv, alice)
	bobConn := dial(t, srv, bob)
	waitForConnections(t, hub, 2)
	assert.Equal(t, int64(2), gauge.Load())

	delivered := hub.Send(&alice, []byte(`{"title":"Low Stock Alert"}`))
	assert.Equal(t, 1, delivered)
	assert.Equal(t, `{"title":"Low Stock Alert"}`, readText(t, aliceConn))

	require.NoError(t, bobConn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := bobConn.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's message")
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	srv := startServer(t, hub)

	user := uuid.New()
	first := dial(t, srv, user)
	second := dial(t, srv, user)
	other := dial(t, srv, uuid.New())
	waitForConnections(t, hub, 3)

	assert.Equal(t, 3, hub.Send(nil, []byte("hello")))
	for _, conn := range []*websocket.Conn{first, second, other} {
		assert.Equal(t, "hello", readText(t, conn))
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	srv := startServer(t, hub)

	user := uuid.New()
	conn := dial(t, srv, user)
	waitForConnections(t, hub, 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")))
	waitForConnections(t, hub, 0)

	assert.Equal(t, 0, hub.Send(&user, []byte("late")))
}

func TestHub_Ping(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), WithPingInterval(20*time.Millisecond))
	srv := startServer(t, hub)

	conn := dial(t, srv, uuid.New())
	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestHub_SendSkipsClientClosedConcurrently(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	userID := uuid.New()
	gone := &client{userID: userID, send: make(chan []byte, sendBuffer)}
	live := &client{userID: userID, send: make(chan []byte, sendBuffer)}
	hub.register(gone)
	hub.register(live)

	// gone is still listed but its channel was closed by a racing unregister
	gone.close()

	var delivered int
	require.NotPanics(t, func() { delivered = hub.Send(nil, []byte("stock")) })
	assert.Equal(t, 1, delivered)
	assert.Equal(t, []byte("stock"), <-live.send)
	assert.Equal(t, sendClosed, gone.trySend([]byte("again")))
}

func TestHub_SendDropsSlowClient(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	userID := uuid.New()
	slow := &client{userID: userID, send: make(chan []byte, 1)}
	hub.register(slow)

	assert.Equal(t, 1, hub.Send(&userID, []byte("a")))
	assert.Equal(t, 0, hub.Send(&userID, []byte("b")))
	assert.Equal(t, 0, hub.Connections())
	assert.Equal(t, sendClosed, slow.trySend([]byte("c")))
}
