package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/arenaleague/arenaclient/pkg/apierror"
	"github.com/arenaleague/arenaclient/pkg/session"
	"github.com/arenaleague/arenaclient/pkg/transport"
)

// Login authenticates with email and password and persists the returned token
// pair to the session store.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	var resp AuthResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   req,
	}, &resp); err != nil {
		return nil, err
	}

	if err := c.storeTokens(resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an unverified account and triggers the OTP email. The
// request is validated locally first: a validation failure never issues a
// network call.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	var resp MessageResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body:   req,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyRegister completes registration with the emailed OTP and persists the
// returned token pair.
func (c *Client) VerifyRegister(ctx context.Context, email, otp string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/verify-register",
		Body:   map[string]string{"email": email, "otp": otp},
	}, &resp); err != nil {
		return nil, err
	}

	if err := c.storeTokens(resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendOTP requests a fresh OTP for the given flow.
func (c *Client) SendOTP(ctx context.Context, email string, purpose OTPPurpose) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/send-otp",
		Body:   map[string]string{"email": email, "purpose": string(purpose)},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForgotPassword starts the password-reset flow by sending an OTP.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/forgot-password",
		Body:   map[string]string{"email": email},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword completes the password-reset flow. The backend requires both
// new_password and confirm_password and checks they match; equality is the
// caller's responsibility, so the same value is sent for both.
func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Body: map[string]string{
			"email":            email,
			"otp":              otp,
			"new_password":     newPassword,
			"confirm_password": newPassword,
		},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the current user's full profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/users/me",
	}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the current user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	var u User
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodPut,
		Path:   "/users/me",
		Body:   req,
	}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout clears the stored session. Purely client-side: the backend keeps no
// session state beyond the tokens themselves.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// TokenExpiry reports when the stored access token expires, for display
// purposes.
func (c *Client) TokenExpiry() (string, error) {
	sess, err := c.store.Get()
	if err != nil {
		return "", err
	}
	if !sess.Valid() {
		return "", fmt.Errorf("not logged in")
	}
	exp, err := session.TokenExpiry(sess.AccessToken)
	if err != nil {
		return "", err
	}
	return exp.String(), nil
}

// storeTokens persists a freshly issued token pair.
func (c *Client) storeTokens(resp AuthResponse) error {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return apierror.New(apierror.KindUnknown, "server returned an incomplete token pair")
	}
	if err := c.store.Set(session.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	if exp, err := session.TokenExpiry(resp.AccessToken); err == nil {
		log.Debug().Time("expires_at", exp).Msg("session established")
	}
	return nil
}

// validationError converts validator output into the Validation kind so
// callers handle local and backend validation uniformly.
func validationError(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return apierror.New(apierror.KindValidation, verrs.Error()).Wrap(err)
	}
	return apierror.New(apierror.KindValidation, err.Error()).Wrap(err)
}

// tokenRefresher calls the refresh endpoint directly, outside the pipeline.
// Feeding a refresh call's own 401 back through the refresh stage would
// recurse.
type tokenRefresher struct {
	baseURL    string
	httpClient *http.Client
}

var _ transport.Refresher = &tokenRefresher{}

func (r *tokenRefresher) Refresh(ctx context.Context, refreshToken string) (transport.TokenPair, error) {
	u, err := url.Parse(r.baseURL)
	if err != nil {
		return transport.TokenPair{}, fmt.Errorf("invalid server URL: %w", err)
	}
	u.Path = path.Join(u.Path, "/auth/refresh")

	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return transport.TokenPair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return transport.TokenPair{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return transport.TokenPair{}, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return transport.TokenPair{}, apierror.FromStatus(resp.StatusCode, data)
	}

	var pair transport.TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return transport.TokenPair{}, fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return transport.TokenPair{}, fmt.Errorf("refresh response missing tokens")
	}
	return pair, nil
}
