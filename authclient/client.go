package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/go-crm-session/internal/errors"
	"github.com/jrsteele09/go-crm-session/internal/utils"
	"github.com/jrsteele09/go-crm-session/oauth2"
	"github.com/jrsteele09/go-crm-session/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

const maxBodyBytes = 1 << 20

// Client talks to the CRM auth API. It is the remote session.Backend.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	oauthConfig *xoauth2.Config
	logger      zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its transport is wrapped so
// request IDs are still added.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			copied := *hc
			c.httpClient = &copied
		}
	}
}

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the API rooted at baseURL (e.g. "http://localhost:8000").
func New(baseURL string, options ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("[authclient.New] base URL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, errors.Errorf("[authclient.New] base URL %q must be http(s)", baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = requestIDTransport{base: base}

	c.oauthConfig = &xoauth2.Config{
		Endpoint: xoauth2.Endpoint{
			TokenURL:  c.baseURL + oauth2.TokenPath,
			AuthStyle: xoauth2.AuthStyleInParams,
		},
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login posts the email as "username" together with the password to /token.
func (c *Client) Login(ctx context.Context, email, password string) (oauth2.Credentials, error) {
	const op = "POST " + oauth2.TokenPath
	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)

	tok, err := c.oauthConfig.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var rErr *xoauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return oauth2.Credentials{}, newAPIError(op, rErr.Response.StatusCode, rErr.Body,
				classify(rErr.Response.StatusCode, apperrors.ErrInvalidCredentials, true))
		}
		return oauth2.Credentials{}, transportOrUnexpected(ctx, op, err)
	}
	resp := oauth2.TokenResponse{
		AccessToken:  utils.NonEmpty(tok.AccessToken),
		RefreshToken: utils.NonEmpty(tok.RefreshToken),
		TokenType:    tok.TokenType,
	}
	if !resp.Complete() {
		return oauth2.Credentials{}, errors.Wrap(apperrors.ErrUnexpected, op+": response missing refresh_token")
	}

	c.logger.Debug().Str("op", op).Str("token_type", resp.TokenType).Msg("token pair issued")
	return oauth2.Credentials{AccessToken: *resp.AccessToken, RefreshToken: *resp.RefreshToken}, nil
}

// Refresh exchanges the refresh token for a new access token. The refresh token is
// sent as JSON, which is why this call does not go through x/oauth2.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "POST " + oauth2.TokenRefreshPath

	body, err := json.Marshal(oauth2.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", errors.Wrap(err, op)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+oauth2.TokenRefreshPath, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(c.httpClient, req, op, apperrors.ErrInvalidRefreshToken, true)
	if err != nil {
		return "", err
	}

	var rr oauth2.RefreshResponse
	if err := json.Unmarshal(respBody, &rr); err != nil {
		return "", errors.Wrap(apperrors.ErrUnexpected, op+": "+err.Error())
	}
	access := utils.Value(rr.AccessToken)
	if access == "" {
		return "", errors.Wrap(apperrors.ErrUnexpected, op+": response missing access_token")
	}
	c.logger.Debug().Str("op", op).Msg("access token refreshed")
	return access, nil
}

// Profile fetches the user behind accessToken.
func (c *Client) Profile(ctx context.Context, accessToken string) (users.Profile, error) {
	const op = "GET " + oauth2.CurrentUserPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+oauth2.CurrentUserPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(c.bearerClient(ctx, accessToken), req, op, apperrors.ErrInvalidToken, false)
	if err != nil {
		return nil, err
	}
	profile, err := users.ParseProfile(respBody)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, op+": "+err.Error())
	}
	return profile, nil
}

// UpdateProfile sends fields to PUT /users/me and returns the updated profile.
// The server ignores "_id" and "email".
func (c *Client) UpdateProfile(ctx context.Context, accessToken string, fields map[string]any) (users.Profile, error) {
	const op = "PUT " + oauth2.CurrentUserPath

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+oauth2.CurrentUserPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	respBody, err := c.do(c.bearerClient(ctx, accessToken), req, op, apperrors.ErrInvalidToken, false)
	if err != nil {
		return nil, err
	}
	profile, err := users.ParseProfile(respBody)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnexpected, op+": "+err.Error())
	}
	return profile, nil
}

// bearerClient returns an HTTP client that adds "Authorization: Bearer <accessToken>".
func (c *Client) bearerClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
	hc := xoauth2.NewClient(ctx, xoauth2.StaticTokenSource(&xoauth2.Token{
		AccessToken: accessToken,
		TokenType:   string(oauth2.BearerTokenType),
	}))
	hc.Timeout = c.httpClient.Timeout
	return hc
}

func (c *Client) do(hc *http.Client, req *http.Request, op string, rejected error, badRequestRejects bool) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, transportOrUnexpected(req.Context(), op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, apperrors.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(op, resp.StatusCode, body, classify(resp.StatusCode, rejected, badRequestRejects))
		c.logger.Debug().Str("op", op).Int("status", resp.StatusCode).Str("detail", apiErr.Detail).Msg("auth API rejected request")
		return nil, apiErr
	}
	return body, nil
}

// transportOrUnexpected tags network failures (including timeouts and cancellation)
// as ErrTransport and everything else as ErrUnexpected.
func transportOrUnexpected(ctx context.Context, op string, err error) error {
	var urlErr *url.Error
	if ctx.Err() != nil || errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w: %w", op, apperrors.ErrTransport, err)
	}
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrUnexpected, err)
}
