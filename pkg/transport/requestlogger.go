package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the client-generated request ID for correlation
// with backend logs.
const RequestIDHeader = "X-Request-ID"

// LogRequests returns middleware that tags each outgoing request with a
// unique request ID and logs its outcome. The ID is attached to both the
// request header and a context logger, so the inner stages share the same
// correlation field. One ID spans a request and its refresh replay.
func LogRequests() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			requestID := uuid.New().String()
			ctx := log.With().Str("request_id", requestID).Logger().WithContext(req.Context())

			r2 := req.Clone(ctx)
			r2.Header.Set(RequestIDHeader, requestID)

			log.Ctx(ctx).Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Msg("outgoing request")

			resp, err := next.RoundTrip(r2)

			ev := log.Ctx(ctx).Debug().
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds()))
			if err != nil {
				ev.Err(err).Msg("request errored")
			} else {
				ev.Int("status", resp.StatusCode).Msg("request completed")
			}
			return resp, err
		})
	}
}
