package livechannel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenaleague/arenaclient/pkg/session"
)

// wsBackend is a fake room-channel server. It records handshake credentials
// and how many sockets are open at once.
type wsBackend struct {
	open  atomic.Int32
	total atomic.Int32

	mu     sync.Mutex
	tokens []string
	rooms  []string

	frames []string // written to each new connection
}

func (b *wsBackend) handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws/rooms/{roomID}", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.tokens = append(b.tokens, req.URL.Query().Get("token"))
		b.rooms = append(b.rooms, chi.URLParam(req, "roomID"))
		b.mu.Unlock()

		conn, err := websocket.Accept(w, req, nil)
		if err != nil {
			return
		}
		b.total.Add(1)
		b.open.Add(1)
		defer b.open.Add(-1)
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx := req.Context()
		for _, frame := range b.frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})
	return r
}

func (b *wsBackend) lastToken() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.tokens) == 0 {
		return ""
	}
	return b.tokens[len(b.tokens)-1]
}

func (b *wsBackend) lastRoom() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.rooms) == 0 {
		return ""
	}
	return b.rooms[len(b.rooms)-1]
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newStore(t *testing.T, access string) session.Store {
	t.Helper()
	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: access, RefreshToken: "R1"}))
	return store
}

func TestConnectDeliversRoomEvents(t *testing.T) {
	backend := &wsBackend{frames: []string{
		`{"room_id": "GLD001", "current_players": 35, "max_players": 50, "status": "open"}`,
		"ping",
		`not json at all`,
		`{"room_id": "GLD001", "current_players": 36, "max_players": 50, "status": "open"}`,
	}}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	m := NewManager(wsURL(srv), newStore(t, "T1"))
	defer m.Close()

	events, err := m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, RoomEvent{RoomID: "GLD001", CurrentPlayers: 35, MaxPlayers: 50, Status: "open"}, ev)

	// The undecodable frames are dropped, not surfaced.
	ev = <-events
	assert.Equal(t, 36, ev.CurrentPlayers)

	assert.Equal(t, "T1", backend.lastToken())
	assert.Equal(t, "GLD001", backend.lastRoom())
}

func TestConnectIsIdempotentForSameRoom(t *testing.T) {
	backend := &wsBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	m := NewManager(wsURL(srv), newStore(t, "T1"))
	defer m.Close()

	ch1, err := m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)
	ch2, err := m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)

	assert.Equal(t, ch1, ch2, "same healthy target returns the same stream")
	assert.Equal(t, int32(1), backend.total.Load(), "no duplicate socket for the same room")
}

func TestConnectReplacesConnectionOnRoomChange(t *testing.T) {
	backend := &wsBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	m := NewManager(wsURL(srv), newStore(t, "T1"))
	defer m.Close()

	ch1, err := m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)
	_, err = m.Connect(context.Background(), "PLT007")
	require.NoError(t, err)

	// The old stream ended and exactly one socket remains, for the new room.
	_, ok := <-ch1
	assert.False(t, ok, "previous room's stream is closed")
	assert.Equal(t, "PLT007", backend.lastRoom())
	assert.Equal(t, int32(2), backend.total.Load())
	require.Eventually(t, func() bool {
		return backend.open.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHandshakeReadsTokenAtConnectTime(t *testing.T) {
	backend := &wsBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	store := newStore(t, "T1")
	m := NewManager(wsURL(srv), store)
	defer m.Close()

	_, err := m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)
	assert.Equal(t, "T1", backend.lastToken())

	m.Disconnect()
	require.NoError(t, store.Set(session.Session{AccessToken: "T2", RefreshToken: "R2"}))

	_, err = m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)
	assert.Equal(t, "T2", backend.lastToken(), "token is read from the store, not cached")
}

func TestDisconnectWithoutConnectionIsNoop(t *testing.T) {
	m := NewManager("ws://localhost:0", session.NewMemStore())
	assert.NotPanics(t, func() {
		m.Disconnect()
		m.Disconnect()
	})
}

func TestCloseTearsDownAndRejectsConnect(t *testing.T) {
	backend := &wsBackend{}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	m := NewManager(wsURL(srv), newStore(t, "T1"))
	ch, err := m.Connect(context.Background(), "GLD001")
	require.NoError(t, err)

	m.Close()

	_, ok := <-ch
	assert.False(t, ok, "stream closed on manager teardown")
	require.Eventually(t, func() bool {
		return backend.open.Load() == 0
	}, 5*time.Second, 10*time.Millisecond)

	_, err = m.Connect(context.Background(), "GLD001")
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestDialFailureIsBounded(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewManager(wsURL(srv), newStore(t, "T1"), WithDialAttempts(3))
	defer m.Close()

	_, err := m.Connect(context.Background(), "GLD001")
	require.Error(t, err)
	assert.Equal(t, int32(3), hits.Load(), "dial retries are bounded")
}
