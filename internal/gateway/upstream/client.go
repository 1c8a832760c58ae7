// Package upstream is the gateway's client for the credential store, the
// backend that actually verifies passwords and mints tokens. The gateway
// never inspects token contents; it brokers them between this API and the
// browser's cookies.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

// Error is a non-2xx answer from the credential store.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Detail)
}

// StatusOf extracts the upstream HTTP status from err, or 0 when err is not
// an upstream Error (i.e. a transport failure).
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// Client talks to the credential store over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates an upstream client. Redirects are not followed: the federated
// code exchange may answer with a redirect carrying tokens in its query, and
// the client must see that response rather than chase it.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Login exchanges credentials for a token pair. The token endpoint follows
// the OAuth2 password-grant wire shape and takes a urlencoded form.
func (c *Client) Login(ctx context.Context, username, password string) (*sessionsdk.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tokens sessionsdk.TokenResponse
	if err := c.do(req, &tokens); err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		return nil, fmt.Errorf("token endpoint returned an incomplete token pair")
	}
	return &tokens, nil
}

// Refresh exchanges a refresh token for a new access token. The credential
// store may rotate the refresh token as well.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*sessionsdk.RefreshResponse, error) {
	var refreshed sessionsdk.RefreshResponse
	err := c.postJSON(ctx, "/api/auth/refresh",
		sessionsdk.RefreshRequest{RefreshToken: refreshToken}, &refreshed)
	if err != nil {
		return nil, err
	}
	if refreshed.AccessToken == "" {
		return nil, fmt.Errorf("refresh endpoint returned no access token")
	}
	return &refreshed, nil
}

// Me resolves the identity behind an access token.
func (c *Client) Me(ctx context.Context, accessToken string) (*sessionsdk.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var identity sessionsdk.Identity
	if err := c.do(req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) (*sessionsdk.Identity, error) {
	var identity sessionsdk.Identity
	err := c.postJSON(ctx, "/api/auth/register", sessionsdk.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout tells the credential store to revoke the session's tokens. The
// refresh token travels in the body because that is the credential the store
// actually revokes; the access token just expires. Callers treat failures as
// advisory; local teardown proceeds regardless.
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	var body io.Reader
	if refreshToken != "" {
		raw, err := json.Marshal(sessionsdk.RefreshRequest{RefreshToken: refreshToken})
		if err != nil {
			return fmt.Errorf("failed to encode logout request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/auth/logout", body)
	if err != nil {
		return fmt.Errorf("failed to create logout request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return c.do(req, nil)
}

// OIDCStatus asks whether the credential store has a federated provider
// configured.
func (c *Client) OIDCStatus(ctx context.Context) (*sessionsdk.OIDCStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/auth/oidc/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	var status sessionsdk.OIDCStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// OIDCLogin asks the credential store to begin an authorization-code flow.
// The returned state is the CSRF nonce the gateway must hold until the
// callback arrives.
func (c *Client) OIDCLogin(ctx context.Context) (*sessionsdk.OIDCLoginResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/auth/oidc/login", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}

	var login sessionsdk.OIDCLoginResponse
	if err := c.do(req, &login); err != nil {
		return nil, err
	}
	if login.AuthorizationURL == "" || login.State == "" {
		return nil, fmt.Errorf("oidc login endpoint returned an incomplete response")
	}
	return &login, nil
}

// ExchangeResult is a completed authorization-code exchange.
type ExchangeResult struct {
	AccessToken  string
	RefreshToken string
	User         *sessionsdk.Identity
}

// OIDCExchange trades an authorization code for tokens. The credential store
// answers in one of two shapes: a JSON body with tokens and the resolved
// user, or a redirect whose Location query carries the tokens. Both are
// handled here so callers only ever see an ExchangeResult.
func (c *Client) OIDCExchange(ctx context.Context, code, state string) (*ExchangeResult, error) {
	body, err := json.Marshal(sessionsdk.OIDCCallbackRequest{Code: code, State: state})
	if err != nil {
		return nil, fmt.Errorf("failed to encode callback request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/auth/oidc/callback", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach credential store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return parseRedirectExchange(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := checkStatus(resp, respBody); err != nil {
		return nil, err
	}

	var payload struct {
		AccessToken  string              `json:"access_token"`
		RefreshToken string              `json:"refresh_token"`
		User         *sessionsdk.Identity `json:"user"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode exchange response: %w", err)
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, fmt.Errorf("exchange response is missing tokens")
	}

	return &ExchangeResult{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		User:         payload.User,
	}, nil
}

// parseRedirectExchange pulls tokens out of a redirect-style exchange
// response, where Location looks like /callback?access_token=..&refresh_token=..
func parseRedirectExchange(resp *http.Response) (*ExchangeResult, error) {
	location := resp.Header.Get("Location")
	if location == "" {
		return nil, fmt.Errorf("exchange redirect has no Location header")
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("exchange redirect has an invalid Location: %w", err)
	}

	q := u.Query()
	access := q.Get("access_token")
	refresh := q.Get("refresh_token")
	if access == "" || refresh == "" {
		return nil, fmt.Errorf("exchange redirect is missing tokens")
	}

	return &ExchangeResult{AccessToken: access, RefreshToken: refresh}, nil
}

// postJSON performs a JSON POST and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// do executes a request, maps non-2xx responses to *Error, and decodes the
// body into result when given.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach credential store: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := checkStatus(resp, body); err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// checkStatus converts a non-2xx response to *Error, preferring the
// credential store's {detail} message when present.
func checkStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	detail := http.StatusText(resp.StatusCode)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	}

	return &Error{Status: resp.StatusCode, Detail: detail}
}
