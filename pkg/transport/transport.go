// Package transport implements the authenticated request pipeline as an
// ordered chain of http.RoundTripper middleware, composed once at client
// construction. The chain attaches the session's bearer token, recovers from
// access-token expiry with a single-flight refresh and one replay per request,
// and normalizes backend error shapes into the apierror taxonomy.
//
// Composition order (outermost first): NormalizeErrors, LogRequests,
// RefreshOn401, Authenticate. The refresh stage wraps the authenticator so a
// replayed request picks up the freshly stored token, and the logger sits
// outside both so one request ID spans a request and its replay.
package transport

import (
	"net/http"
	"strings"
)

// Middleware wraps a RoundTripper with additional behavior.
type Middleware func(next http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to the http.RoundTripper interface.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain composes middleware around a base RoundTripper. The first middleware
// is outermost: it sees the request first and the response last.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mw) - 1; i >= 0; i-- {
		rt = mw[i](rt)
	}
	return rt
}

// Hooks receive terminal authentication outcomes from the pipeline. The
// application typically wires these to its logout and navigation logic. Nil
// hooks are skipped.
type Hooks struct {
	// OnSessionExpired fires exactly once per expiry episode when the session
	// cannot be recovered: the refresh token is absent, or the refresh call
	// itself failed. The session store has already been cleared.
	OnSessionExpired func()

	// OnForbidden fires when a response reports valid but insufficient
	// credentials. Retrying would never succeed.
	OnForbidden func()
}

// unauthenticatedPaths are the endpoints that must never carry an access
// token: they either precede authentication or are themselves exchanging
// credentials.
var unauthenticatedPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/verify-register",
	"/auth/send-otp",
	"/auth/refresh",
	"/auth/forgot-password",
	"/auth/reset-password",
}

// IsUnauthenticatedPath reports whether the given URL path is on the
// unauthenticated-endpoint denylist.
func IsUnauthenticatedPath(path string) bool {
	for _, p := range unauthenticatedPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
