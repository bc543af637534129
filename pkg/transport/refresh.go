package transport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/arenaleague/arenaclient/pkg/apierror"
	"github.com/arenaleague/arenaclient/pkg/session"
)

// TokenPair is the result of a successful token refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresher exchanges a refresh token for a new token pair. Implementations
// must call the refresh endpoint through a transport path that bypasses this
// pipeline, so the refresh call's own 401 cannot re-enter the coordinator.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// errNoRefreshToken signals a 401 arriving with no refresh token to recover
// with.
var errNoRefreshToken = errors.New("no refresh token available")

// ctxKey marks requests that have already been replayed once.
type ctxKey int

const retriedKey ctxKey = iota

func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey, true)
}

func wasRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey).(bool)
	return v
}

// RefreshOn401 returns the refresh-coordinator middleware. When a response
// signals expired authentication (HTTP 401) on an authenticated path, it
// refreshes the session exactly once per expiry episode and replays the failed
// request with the new token.
//
// Concurrent 401s during the refresh window join the in-flight refresh rather
// than issuing their own: N concurrently failing requests trigger exactly one
// refresh call. Each captured request is replayed at most once; a request that
// fails again after a successful refresh surfaces as a terminal error.
//
// On refresh failure the session store is cleared, every captured request
// fails as Unauthorized, and Hooks.OnSessionExpired fires once. The refresh
// itself is never retried: an unreachable refresh endpoint ends the session
// rather than looping.
func RefreshOn401(store session.Store, refresher Refresher, hooks Hooks) Middleware {
	c := &refreshCoordinator{
		store:     store,
		refresher: refresher,
		hooks:     hooks,
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return c.roundTrip(req, next)
		})
	}
}

type refreshCoordinator struct {
	store     session.Store
	refresher Refresher
	hooks     Hooks

	// group holds the refresh in flight; concurrent callers share its single
	// outcome instead of issuing duplicate refresh calls.
	group singleflight.Group
}

func (c *refreshCoordinator) roundTrip(req *http.Request, next http.RoundTripper) (*http.Response, error) {
	resp, err := next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// 401s from credential-exchanging endpoints are ordinary failures (bad
	// password, rejected refresh token), not expiry episodes.
	if IsUnauthenticatedPath(req.URL.Path) {
		return resp, nil
	}

	// Bounded retry depth: a request already replayed once is terminal.
	if wasRetried(req.Context()) {
		return resp, nil
	}

	// A body without GetBody cannot be resubmitted; surface the 401 as-is.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if rerr := c.refresh(req.Context()); rerr != nil {
		return nil, apierror.New(apierror.KindUnauthorized, "session expired, please log in again").
			WithStatus(http.StatusUnauthorized).
			Wrap(rerr)
	}

	retryReq, rerr := replayableCopy(req)
	if rerr != nil {
		return nil, rerr
	}
	log.Ctx(req.Context()).Debug().Str("path", req.URL.Path).Msg("replaying request after token refresh")
	return next.RoundTrip(retryReq)
}

// refresh performs (or joins) the single-flight refresh for the current expiry
// episode. It returns nil once new tokens are stored.
func (c *refreshCoordinator) refresh(ctx context.Context) error {
	_, err, shared := c.group.Do("refresh", func() (any, error) {
		sess, err := c.store.Get()
		if err != nil {
			return nil, err
		}
		if sess.RefreshToken == "" {
			c.invalidate(ctx)
			return nil, errNoRefreshToken
		}

		// A refresh runs to completion once started, even if the request that
		// triggered it is canceled: other captured requests depend on its
		// outcome.
		pair, err := c.refresher.Refresh(context.WithoutCancel(ctx), sess.RefreshToken)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("token refresh failed, ending session")
			c.invalidate(ctx)
			return nil, err
		}

		if err := c.store.Set(session.Session{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}); err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().Msg("access token refreshed")
		return nil, nil
	})
	if shared {
		log.Ctx(ctx).Debug().Msg("joined in-flight token refresh")
	}
	return err
}

// invalidate clears the session and notifies the application once per
// episode. It runs inside the single-flight call, so concurrent failures
// observe exactly one teardown.
func (c *refreshCoordinator) invalidate(ctx context.Context) {
	if err := c.store.Clear(); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to clear session store")
	}
	if c.hooks.OnSessionExpired != nil {
		c.hooks.OnSessionExpired()
	}
}

// replayableCopy clones the request for its single replay, rewinding the body
// and marking the context so a second 401 is not retried again.
func replayableCopy(req *http.Request) (*http.Request, error) {
	r2 := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, apierror.FromTransport(err)
		}
		r2.Body = body
	}
	return r2, nil
}
