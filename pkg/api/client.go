// Package api is the application-facing client for the Arena backend. It owns
// the composed request pipeline (bearer-token attachment, single-flight token
// refresh, error normalization) and exposes the backend's operations as typed
// methods. Domain methods are thin JSON shaping over the pipeline; all
// failure-recovery logic lives in the transport and livechannel packages.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arenaleague/arenaclient/pkg/apierror"
	"github.com/arenaleague/arenaclient/pkg/session"
	"github.com/arenaleague/arenaclient/pkg/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client makes authenticated requests to the Arena backend.
type Client struct {
	baseURL    string
	store      session.Store
	httpClient *http.Client
	validate   *validator.Validate
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	hooks         transport.Hooks
	timeout       time.Duration
	baseTransport http.RoundTripper
}

// WithHooks wires the application's logout and navigation side effects into
// the pipeline.
func WithHooks(hooks transport.Hooks) Option {
	return func(o *clientOptions) { o.hooks = hooks }
}

// WithTimeout sets the per-request timeout. Default is 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithBaseTransport replaces the wire-level RoundTripper under the pipeline.
// Mainly for tests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.baseTransport = rt }
}

// New creates a client for the given backend base URL (e.g.
// "http://localhost:8000"). The session store is read by the pipeline on every
// request and written only by the refresh stage and the login/logout methods.
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	o := clientOptions{
		timeout:       30 * time.Second,
		baseTransport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// The refresher bypasses the pipeline so its own failures cannot re-enter
	// the refresh stage.
	refresher := &tokenRefresher{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: o.baseTransport, Timeout: o.timeout},
	}

	rt := transport.Chain(o.baseTransport,
		transport.NormalizeErrors(o.hooks),
		transport.LogRequests(),
		transport.RefreshOn401(store, refresher, o.hooks),
		transport.Authenticate(store),
	)

	return &Client{
		baseURL:    baseURL,
		store:      store,
		httpClient: &http.Client{Transport: rt, Timeout: o.timeout},
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// RequestOptions describes one API call.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST, PUT, DELETE)
	Path        string            // API endpoint path
	QueryParams map[string]string // Optional query parameters
	Body        any               // Optional request body, JSON-encoded
}

// Do makes an API request and decodes the JSON response into out (skipped when
// out is nil). Errors are always apierror values.
func (c *Client) Do(ctx context.Context, opts RequestOptions, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return apierror.FromTransport(err)
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	var bodyReader io.Reader
	if opts.Body != nil {
		data, merr := json.Marshal(opts.Body)
		if merr != nil {
			return apierror.FromTransport(merr)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(withLogger(ctx), opts.Method, u.String(), bodyReader)
	if err != nil {
		return apierror.FromTransport(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var aerr *apierror.Error
		if errors.As(err, &aerr) {
			return aerr
		}
		return apierror.FromTransport(err)
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if derr := json.NewDecoder(resp.Body).Decode(out); derr != nil {
		return apierror.New(apierror.KindUnknown, "unable to decode server response").Wrap(derr)
	}
	return nil
}

// withLogger ensures the pipeline's context logging has somewhere to go when
// the caller did not attach a logger of its own.
func withLogger(ctx context.Context) context.Context {
	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		return log.Logger.WithContext(ctx)
	}
	return ctx
}
