// Package livechannel maintains the client's live room-event connection: one
// websocket per manager, carrying occupancy and status updates for the room
// the application is currently watching. Switching rooms replaces the
// connection; the old socket is fully closed before the new one is dialed.
package livechannel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/arenaleague/arenaclient/pkg/session"
)

// RoomEvent is one inbound frame from the room channel.
type RoomEvent struct {
	RoomID         string `json:"room_id"`
	CurrentPlayers int    `json:"current_players"`
	MaxPlayers     int    `json:"max_players"`
	Status         string `json:"status"`
}

// ErrManagerClosed is returned by Connect after Close.
var ErrManagerClosed = errors.New("live channel manager is closed")

// Manager owns at most one live connection at a time. Safe for concurrent
// use. Whatever holds a Manager must call Close on its own teardown; the
// manager never leaks an open socket past that point.
type Manager struct {
	baseURL      string
	store        session.Store
	dialAttempts uint

	mu     sync.Mutex
	sub    *subscription
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialAttempts sets how many times Connect tries to establish the socket
// before giving up. Attempts are spaced with exponential backoff.
func WithDialAttempts(n uint) Option {
	return func(m *Manager) {
		if n > 0 {
			m.dialAttempts = n
		}
	}
}

// NewManager creates a manager dialing against the given websocket base URL
// (e.g. "ws://localhost:8000"). The handshake token is read from the store at
// connect time, never cached.
func NewManager(baseURL string, store session.Store, opts ...Option) *Manager {
	m := &Manager{
		baseURL:      baseURL,
		store:        store,
		dialAttempts: 3,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type subscription struct {
	roomID string
	conn   *websocket.Conn
	events chan RoomEvent
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) healthy() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Connect subscribes to the given room's event stream. Calling it again for
// the same room while the connection is healthy returns the existing stream;
// a different room (or a dead connection) tears the old subscription down
// first. The returned channel is closed when the connection ends, for any
// reason; reconnection after a drop is the caller's decision.
func (m *Manager) Connect(ctx context.Context, roomID string) (<-chan RoomEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	if s := m.sub; s != nil {
		if s.roomID == roomID && s.healthy() {
			return s.events, nil
		}
		m.teardownLocked()
	}

	sess, err := m.store.Get()
	if err != nil {
		return nil, fmt.Errorf("unable to read session: %w", err)
	}

	target, err := m.roomURL(roomID, sess.AccessToken)
	if err != nil {
		return nil, err
	}

	var conn *websocket.Conn
	err = retry.Do(func() error {
		c, _, derr := websocket.Dial(ctx, target, nil)
		if derr != nil {
			return derr
		}
		conn = c
		return nil
	},
		retry.Attempts(m.dialAttempts),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to room channel: %w", err)
	}

	readCtx, cancel := context.WithCancel(context.Background())
	s := &subscription{
		roomID: roomID,
		conn:   conn,
		events: make(chan RoomEvent, 8),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.sub = s
	go s.readLoop(readCtx)

	log.Debug().Str("room_id", roomID).Msg("room channel connected")
	return s.events, nil
}

// Disconnect closes the active subscription, if any. Safe to call when none
// exists.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardownLocked()
}

// Close releases the manager. Any open socket is closed and further Connect
// calls fail.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.teardownLocked()
}

// teardownLocked closes the current subscription and waits for its reader to
// exit, so a replacement connection never coexists with the old one.
func (m *Manager) teardownLocked() {
	s := m.sub
	if s == nil {
		return
	}
	m.sub = nil
	s.cancel()
	s.conn.Close(websocket.StatusNormalClosure, "closing")
	<-s.done
	log.Debug().Str("room_id", s.roomID).Msg("room channel disconnected")
}

// roomURL builds the handshake URL: the room identifier in the path and the
// access token as a query credential.
func (m *Manager) roomURL(roomID, token string) (string, error) {
	u, err := url.Parse(m.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid channel base URL: %w", err)
	}
	u.Path = path.Join(u.Path, "ws", "rooms", roomID)
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// readLoop parses inbound frames and forwards them to the subscriber. Frames
// that do not decode to a room event (keep-alive pings and the like) are
// dropped: this is a best-effort channel, not a reliable transport.
func (s *subscription) readLoop(ctx context.Context) {
	defer func() {
		close(s.events)
		close(s.done)
	}()

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			if ctx.Err() == nil {
				log.Debug().Err(err).Str("room_id", s.roomID).Msg("room channel read failed")
			}
			return
		}

		var ev RoomEvent
		if err := json.Unmarshal(data, &ev); err != nil || ev.RoomID == "" {
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
