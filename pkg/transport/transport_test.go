package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenaleague/arenaclient/pkg/apierror"
	"github.com/arenaleague/arenaclient/pkg/session"
)

// fakeRefresher counts refresh calls and optionally blocks on a gate so tests
// can hold the refresh in flight while more requests fail.
type fakeRefresher struct {
	calls atomic.Int32
	gate  chan struct{}
	pair  TokenPair
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return TokenPair{}, f.err
	}
	return f.pair, nil
}

// testBackend is a fake API server that accepts exactly one bearer token and
// rejects everything else with the backend's error shape.
type testBackend struct {
	validToken   atomic.Value // string
	unauthorized atomic.Int32 // 401s issued on authenticated paths
	authHeaders  sync.Map     // path -> last Authorization header seen
}

func newTestBackend(validToken string) (*testBackend, *httptest.Server) {
	b := &testBackend{}
	b.validToken.Store(validToken)

	r := chi.NewRouter()
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		b.authHeaders.Store(req.URL.Path, req.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "A1", "refresh_token": "R1"})
	})
	r.Get("/rooms", func(w http.ResponseWriter, req *http.Request) {
		b.authHeaders.Store(req.URL.Path, req.Header.Get("Authorization"))
		if req.Header.Get("Authorization") != "Bearer "+b.validToken.Load().(string) {
			b.unauthorized.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "token expired"}`))
			return
		}
		w.Write([]byte(`[{"id": "GLD001", "current_players": 35}]`))
	})
	r.Post("/rooms/join", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer "+b.validToken.Load().(string) {
			b.unauthorized.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "token expired"}`))
			return
		}
		var payload map[string]string
		json.NewDecoder(req.Body).Decode(&payload)
		json.NewEncoder(w).Encode(payload)
	})
	r.Get("/admin/reports", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "admin access required"}`))
	})
	r.Get("/always-401", func(w http.ResponseWriter, req *http.Request) {
		b.unauthorized.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "token expired"}`))
	})
	r.Get("/echo-request-id", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(req.Header.Get(RequestIDHeader)))
	})

	return b, httptest.NewServer(r)
}

type hookCounts struct {
	expired   atomic.Int32
	forbidden atomic.Int32
}

func (h *hookCounts) hooks() Hooks {
	return Hooks{
		OnSessionExpired: func() { h.expired.Add(1) },
		OnForbidden:      func() { h.forbidden.Add(1) },
	}
}

func newPipelineClient(store session.Store, refresher Refresher, hooks Hooks) *http.Client {
	return &http.Client{
		Transport: Chain(http.DefaultTransport,
			NormalizeErrors(hooks),
			LogRequests(),
			RefreshOn401(store, refresher, hooks),
			Authenticate(store),
		),
	}
}

func TestSingleFlightRefreshRetriesAllPending(t *testing.T) {
	backend, srv := newTestBackend("A2")
	defer srv.Close()

	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: "A1", RefreshToken: "R1"}))

	refresher := &fakeRefresher{
		gate: make(chan struct{}),
		pair: TokenPair{AccessToken: "A2", RefreshToken: "R2"},
	}
	var hooks hookCounts
	client := newPipelineClient(store, refresher, hooks.hooks())

	const n = 3
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/rooms")
			if err == nil {
				resp.Body.Close()
			}
			results[i] = err
		}()
	}

	// Hold the refresh in flight until all three requests have failed with
	// 401, so they all join the same episode.
	require.Eventually(t, func() bool {
		return backend.unauthorized.Load() >= n
	}, 5*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(refresher.gate)
	wg.Wait()

	for i := range n {
		assert.NoError(t, results[i], "request %d should succeed after refresh", i)
	}
	assert.Equal(t, int32(1), refresher.calls.Load(), "exactly one refresh call")

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, session.Session{AccessToken: "A2", RefreshToken: "R2"}, sess)

	// The replay carried the refreshed token.
	hdr, _ := backend.authHeaders.Load("/rooms")
	assert.Equal(t, "Bearer A2", hdr)
	assert.Equal(t, int32(0), hooks.expired.Load())
}

func TestRefreshFailureClearsSessionAndFailsAllPending(t *testing.T) {
	backend, srv := newTestBackend("A2")
	defer srv.Close()

	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: "A1", RefreshToken: "R1"}))

	refresher := &fakeRefresher{
		gate: make(chan struct{}),
		err:  errors.New("refresh token revoked"),
	}
	var hooks hookCounts
	client := newPipelineClient(store, refresher, hooks.hooks())

	const n = 3
	var wg sync.WaitGroup
	results := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Get(srv.URL + "/rooms")
			if err == nil {
				resp.Body.Close()
			}
			results[i] = err
		}()
	}

	require.Eventually(t, func() bool {
		return backend.unauthorized.Load() >= n
	}, 5*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(refresher.gate)
	wg.Wait()

	for i := range n {
		require.Error(t, results[i])
		assert.ErrorIs(t, results[i], apierror.ErrUnauthorized, "request %d is terminal unauthorized", i)
	}
	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.Equal(t, int32(1), hooks.expired.Load(), "logout side effect fires exactly once")

	sess, err := store.Get()
	require.NoError(t, err)
	assert.Equal(t, session.Session{}, sess, "store ends cleared")
}

func TestBoundedRetryDepth(t *testing.T) {
	_, srv := newTestBackend("A2")
	defer srv.Close()

	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: "A1", RefreshToken: "R1"}))

	refresher := &fakeRefresher{pair: TokenPair{AccessToken: "A2", RefreshToken: "R2"}}
	var hooks hookCounts
	client := newPipelineClient(store, refresher, hooks.hooks())

	// The endpoint 401s even with the fresh token: the replay must not loop.
	_, err := client.Get(srv.URL + "/always-401")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrUnauthorized)
	assert.Equal(t, int32(1), refresher.calls.Load(), "no second refresh after replay fails")

	// The session survived: the refresh itself succeeded.
	sess, serr := store.Get()
	require.NoError(t, serr)
	assert.Equal(t, "A2", sess.AccessToken)
	assert.Equal(t, int32(0), hooks.expired.Load())
}

func TestNoRefreshTokenInvalidatesImmediately(t *testing.T) {
	_, srv := newTestBackend("A2")
	defer srv.Close()

	store := session.NewMemStore()
	refresher := &fakeRefresher{pair: TokenPair{AccessToken: "A2", RefreshToken: "R2"}}
	var hooks hookCounts
	client := newPipelineClient(store, refresher, hooks.hooks())

	_, err := client.Get(srv.URL + "/rooms")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrUnauthorized)
	assert.Equal(t, int32(0), refresher.calls.Load(), "no refresh call without a refresh token")
	assert.Equal(t, int32(1), hooks.expired.Load())
}

func TestUnauthenticatedPathNeverCarriesToken(t *testing.T) {
	backend, srv := newTestBackend("A1")
	defer srv.Close()

	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: "A1", RefreshToken: "R1"}))

	var hooks hookCounts
	client := newPipelineClient(store, &fakeRefresher{}, hooks.hooks())

	resp, err := client.Post(srv.URL+"/auth/login", "application/json",
		bytes.NewReader([]byte(`{"email": "a@b.c", "password": "pw"}`)))
	require.NoError(t, err)
	resp.Body.Close()

	hdr, ok := backend.authHeaders.Load("/auth/login")
	require.True(t, ok)
	assert.Empty(t, hdr, "auth endpoint received an Authorization header")
}

func TestForbiddenFiresRedirectHookWithoutRefresh(t *testing.T) {
	_, srv := newTestBackend("A1")
	defer srv.Close()

	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: "A1", RefreshToken: "R1"}))

	refresher := &fakeRefresher{}
	var hooks hookCounts
	client := newPipelineClient(store, refresher, hooks.hooks())

	_, err := client.Get(srv.URL + "/admin/reports")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	var aerr *apierror.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "admin access required", aerr.Error())

	assert.Equal(t, int32(0), refresher.calls.Load(), "403 never enters the refresh machine")
	assert.Equal(t, int32(1), hooks.forbidden.Load())
	assert.Equal(t, int32(0), hooks.expired.Load())

	// Session stays intact: the credentials are valid, just insufficient.
	sess, serr := store.Get()
	require.NoError(t, serr)
	assert.True(t, sess.Valid())
}

func TestReplayRewindsRequestBody(t *testing.T) {
	_, srv := newTestBackend("A2")
	defer srv.Close()

	store := session.NewMemStore()
	require.NoError(t, store.Set(session.Session{AccessToken: "A1", RefreshToken: "R1"}))

	refresher := &fakeRefresher{pair: TokenPair{AccessToken: "A2", RefreshToken: "R2"}}
	var hooks hookCounts
	client := newPipelineClient(store, refresher, hooks.hooks())

	resp, err := client.Post(srv.URL+"/rooms/join", "application/json",
		bytes.NewReader([]byte(`{"room_id": "GLD001"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var echoed map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&echoed))
	assert.Equal(t, "GLD001", echoed["room_id"], "replayed request carried the full body")
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestNetworkFailureNormalized(t *testing.T) {
	store := session.NewMemStore()
	var hooks hookCounts
	client := newPipelineClient(store, &fakeRefresher{}, hooks.hooks())
	client.Timeout = 2 * time.Second

	// Nothing listens on the reserved port; the dial fails outright.
	_, err := client.Get("http://127.0.0.1:1/rooms")
	require.Error(t, err)
	assert.ErrorIs(t, err, apierror.ErrNetwork)
}

func TestLogRequestsAttachesRequestID(t *testing.T) {
	_, srv := newTestBackend("A1")
	defer srv.Close()

	store := session.NewMemStore()
	var hooks hookCounts
	client := newPipelineClient(store, &fakeRefresher{}, hooks.hooks())

	resp, err := client.Get(srv.URL + "/echo-request-id")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, buf.String(), "request reached the server without a request ID")
}

func TestIsUnauthenticatedPath(t *testing.T) {
	for _, path := range []string{
		"/auth/login", "/auth/register", "/auth/verify-register",
		"/auth/send-otp", "/auth/refresh", "/auth/forgot-password", "/auth/reset-password",
	} {
		t.Run(path, func(t *testing.T) {
			assert.True(t, IsUnauthenticatedPath(path))
		})
	}
	assert.False(t, IsUnauthenticatedPath("/rooms"))
	assert.False(t, IsUnauthenticatedPath("/users/me"))
	assert.False(t, IsUnauthenticatedPath(fmt.Sprintf("/leagues/%s/rooms", "gold")))
}
