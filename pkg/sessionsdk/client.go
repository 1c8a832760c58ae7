package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the session gateway. It holds session cookies in
// an in-process cookie jar, the way a browser would, and can create a
// SessionService for stateful use.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a gateway client with a fresh cookie jar. Session
// cookies set by the gateway are stored in the jar and replayed on every
// subsequent request.
func NewSDKClient(baseURL string) (*SDKClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// NewSession creates a SessionService bound to this client. The service
// starts in the Loading state; call Bootstrap to resolve it.
func (c *SDKClient) NewSession() *SessionService {
	return newSessionService(c)
}

// baseURL parses the configured base URL. Used for direct jar access.
func (c *SDKClient) baseURL() (*url.URL, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	return u, nil
}

// HasSessionCookies reports whether the jar currently holds any session
// cookie for the gateway. The jar does not expose HttpOnly values, only
// their presence, which is all the SDK ever needs.
func (c *SDKClient) HasSessionCookies() bool {
	u, err := c.baseURL()
	if err != nil || c.HTTPClient.Jar == nil {
		return false
	}

	for _, cookie := range c.HTTPClient.Jar.Cookies(u) {
		if cookie.Name == AccessTokenCookie || cookie.Name == RefreshTokenCookie {
			return true
		}
	}
	return false
}

// hasRefreshCookie reports whether the jar holds a refresh token cookie.
// When it is absent a 401 cannot be recovered from and refresh is skipped.
func (c *SDKClient) hasRefreshCookie() bool {
	u, err := c.baseURL()
	if err != nil || c.HTTPClient.Jar == nil {
		return false
	}

	for _, cookie := range c.HTTPClient.Jar.Cookies(u) {
		if cookie.Name == RefreshTokenCookie {
			return true
		}
	}
	return false
}

// clearSessionCookies removes both session cookies from the local jar. Used
// when tearing down a session locally, regardless of whether the gateway
// acknowledged the logout.
func (c *SDKClient) clearSessionCookies() {
	u, err := c.baseURL()
	if err != nil || c.HTTPClient.Jar == nil {
		return
	}

	c.HTTPClient.Jar.SetCookies(u, []*http.Cookie{
		{Name: AccessTokenCookie, Value: "", Path: "/", MaxAge: -1},
		{Name: RefreshTokenCookie, Value: "", Path: "/", MaxAge: -1},
	})
}

// doRequest performs an HTTP request against the gateway and decodes the JSON
// response into result (when result is non-nil). Non-2xx responses are turned
// into typed AuthErrors; transport failures map to ErrUpstreamUnreachable.
func (c *SDKClient) doRequest(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return ErrUpstreamUnreachable.WithDetail(err.Error())
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := parseErrorResponse(resp, respBody); err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// getJSON performs a GET request and decodes the response into result.
func (c *SDKClient) getJSON(ctx context.Context, path string, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

// postJSON performs a POST request with an optional JSON body.
func (c *SDKClient) postJSON(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}

// Me fetches the identity bound to the current session cookies.
func (c *SDKClient) Me(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := c.getJSON(ctx, "/auth/me", &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Register creates a new account through the gateway. Registration does not
// establish a session; call Login afterwards.
func (c *SDKClient) Register(ctx context.Context, username, email, password string) (*Identity, error) {
	var identity Identity
	req := RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.postJSON(ctx, "/auth/register", req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
