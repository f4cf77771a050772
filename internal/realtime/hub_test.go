package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road_treatment/internal/worker"
)

type recordingForwarder struct {
	mu   sync.Mutex
	envs []Envelope
}

func (f *recordingForwarder) Forward(env Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envs = append(f.envs, env)
}

func newTestHub(t *testing.T, maxClients int) (*Hub, *httptest.Server) {
	t.Helper()
	pool, err := worker.NewPool("ws-test", maxClients)
	require.NoError(t, err)
	hub := NewHub(pool, maxClients, 8)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client, err := hub.Register(conn, 1, "dispatcher")
		if err != nil {
			_ = conn.Close()
			return
		}
		client.ReadLoop()
	}))

	t.Cleanup(func() {
		srv.Close()
		hub.Close()
		pool.Release(time.Second)
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_ClientReceivesPublishedEvent(t *testing.T) {
	hub, srv := newTestHub(t, 4)
	fwd := &recordingForwarder{}
	hub.SetForwarder(fwd)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(TicketDeleted, map[string]uint{"id": 7})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, TicketDeleted, env.Event)
	assert.JSONEq(t, `{"id":7}`, string(env.Data))

	fwd.mu.Lock()
	defer fwd.mu.Unlock()
	require.Len(t, fwd.envs, 1)
	assert.Equal(t, TicketDeleted, fwd.envs[0].Event)
}

func TestHub_DeliverSkipsForwarder(t *testing.T) {
	hub, srv := newTestHub(t, 4)
	fwd := &recordingForwarder{}
	hub.SetForwarder(fwd)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Deliver(Envelope{Event: TruckUpdated, Data: json.RawMessage(`{"id":3}`)})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"truck_updated","data":{"id":3}}`, string(raw))

	fwd.mu.Lock()
	defer fwd.mu.Unlock()
	assert.Empty(t, fwd.envs)
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv := newTestHub(t, 4)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsBeyondCapacity(t *testing.T) {
	hub, srv := newTestHub(t, 1)

	dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	second := dial(t, srv)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 1, hub.ClientCount())
}
