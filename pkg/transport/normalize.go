package transport

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/arenaleague/arenaclient/pkg/apierror"
)

// maxErrorBody caps how much of an error response body is read for
// normalization.
const maxErrorBody = 64 << 10

// NormalizeErrors returns the outermost pipeline stage. It converts transport
// failures and HTTP error statuses into apierror values, so callers see one
// taxonomy regardless of what the backend produced. Successful responses pass
// through untouched.
//
// A Forbidden outcome additionally fires Hooks.OnForbidden: the credentials
// are valid but insufficient, so the application should navigate somewhere
// safe rather than retry.
func NormalizeErrors(hooks Hooks) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil {
				var aerr *apierror.Error
				if errors.As(err, &aerr) {
					// Already normalized by an inner stage.
					return nil, aerr
				}
				log.Ctx(req.Context()).Debug().Err(err).Str("path", req.URL.Path).Msg("transport failure")
				return nil, apierror.FromTransport(err)
			}

			if resp.StatusCode < 400 {
				return resp, nil
			}

			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()

			aerr := apierror.FromStatus(resp.StatusCode, body)
			log.Ctx(req.Context()).Debug().
				Int("status", resp.StatusCode).
				Str("kind", string(aerr.Kind())).
				Str("path", req.URL.Path).
				Msg("request failed")

			if aerr.Kind() == apierror.KindForbidden && hooks.OnForbidden != nil {
				hooks.OnForbidden()
			}
			return nil, aerr
		})
	}
}
