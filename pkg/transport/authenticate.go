package transport

import (
	"net/http"

	"github.com/arenaleague/arenaclient/pkg/session"
)

// Authenticate returns middleware that attaches the session's access token as
// a bearer credential. Requests to unauthenticated endpoints pass through
// unmodified, as do requests when no token is present (the backend rejects
// those, which the downstream stages handle).
//
// This stage only reads the store; it never writes tokens.
func Authenticate(store session.Store) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if IsUnauthenticatedPath(req.URL.Path) {
				return next.RoundTrip(req)
			}

			sess, err := store.Get()
			if err != nil || sess.AccessToken == "" {
				return next.RoundTrip(req)
			}

			// RoundTrippers must not mutate the caller's request.
			r2 := req.Clone(req.Context())
			r2.Header.Set("Authorization", "Bearer "+sess.AccessToken)
			return next.RoundTrip(r2)
		})
	}
}
