package sessionsdk

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
)

// fakeGateway is a minimal in-memory stand-in for the session gateway. It
// issues opaque token values via cookies and validates them on /auth/me.
type fakeGateway struct {
	mu           sync.Mutex
	accessValue  string
	refreshValue string

	refreshCount atomic.Int32
	refreshDelay time.Duration
	failRefresh  bool
	failMe       bool

	oidcEnabled  bool
	oidcState    string
	stateCounter atomic.Int32

	identity Identity
	srv      *httptest.Server
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()

	g := &fakeGateway{
		accessValue:  "access-1",
		refreshValue: "refresh-1",
		identity: Identity{
			UserID:   "01JX2V4N8PDEADBEEF00000000",
			Username: "alice",
			Email:    "alice@example.com",
			Role:     RoleUser,
			IsActive: true,
		},
	}

	g.oidcEnabled = true

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", g.handleLogin)
	mux.HandleFunc("GET /auth/me", g.handleMe)
	mux.HandleFunc("POST /auth/refresh", g.handleRefresh)
	mux.HandleFunc("POST /auth/logout", g.handleLogout)
	mux.HandleFunc("GET /auth/oidc/status", g.handleOIDCStatus)
	mux.HandleFunc("GET /auth/oidc/login", g.handleOIDCLogin)
	mux.HandleFunc("POST /auth/oidc/callback", g.handleOIDCCallback)

	g.srv = httptest.NewServer(mux)
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) client(t *testing.T) *SDKClient {
	t.Helper()
	c, err := NewSDKClient(g.srv.URL)
	require.NoError(t, err)
	return c
}

// seedCookies installs session cookies directly into the client's jar, as if
// a login had happened earlier.
func (g *fakeGateway) seedCookies(t *testing.T, c *SDKClient, access, refresh string) {
	t.Helper()
	u, err := url.Parse(g.srv.URL)
	require.NoError(t, err)

	var cookies []*http.Cookie
	if access != "" {
		cookies = append(cookies, &http.Cookie{Name: AccessTokenCookie, Value: access, Path: "/"})
	}
	if refresh != "" {
		cookies = append(cookies, &http.Cookie{Name: RefreshTokenCookie, Value: refresh, Path: "/"})
	}
	c.HTTPClient.Jar.SetCookies(u, cookies)
}

func (g *fakeGateway) setSessionCookies(w http.ResponseWriter, access, refresh string) {
	http.SetCookie(w, &http.Cookie{Name: AccessTokenCookie, Value: access, Path: "/", HttpOnly: true})
	if refresh != "" {
		http.SetCookie(w, &http.Cookie{Name: RefreshTokenCookie, Value: refresh, Path: "/", HttpOnly: true})
	}
}

func (g *fakeGateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Username != "alice" || req.Password != "secret" {
		ErrInvalidCredentials.WriteError(w)
		return
	}

	g.mu.Lock()
	access, refresh := g.accessValue, g.refreshValue
	g.mu.Unlock()

	g.setSessionCookies(w, access, refresh)
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged in"})
}

func (g *fakeGateway) handleMe(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(AccessTokenCookie)

	g.mu.Lock()
	valid := err == nil && cookie.Value == g.accessValue && !g.failMe
	identity := g.identity
	g.mu.Unlock()

	if !valid {
		ErrNotAuthenticated.WriteError(w)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, identity)
}

func (g *fakeGateway) handleRefresh(w http.ResponseWriter, r *http.Request) {
	g.refreshCount.Add(1)
	if g.refreshDelay > 0 {
		time.Sleep(g.refreshDelay)
	}

	cookie, err := r.Cookie(RefreshTokenCookie)

	g.mu.Lock()
	valid := err == nil && cookie.Value == g.refreshValue && !g.failRefresh
	if valid {
		g.accessValue = g.accessValue + "r"
	}
	access := g.accessValue
	g.mu.Unlock()

	if !valid {
		ErrRefreshFailed.WriteError(w)
		return
	}
	g.setSessionCookies(w, access, "")
	httpx.WriteJSON(w, http.StatusOK, RefreshResponse{AccessToken: access})
}

func (g *fakeGateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: AccessTokenCookie, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: RefreshTokenCookie, Value: "", Path: "/", MaxAge: -1})
	httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "logged out"})
}

func (g *fakeGateway) handleOIDCStatus(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	enabled := g.oidcEnabled
	g.mu.Unlock()
	httpx.WriteJSON(w, http.StatusOK, OIDCStatus{Enabled: enabled, Configured: enabled})
}

func (g *fakeGateway) handleOIDCLogin(w http.ResponseWriter, r *http.Request) {
	state := fmt.Sprintf("state-%d", g.stateCounter.Add(1))

	g.mu.Lock()
	g.oidcState = state
	g.mu.Unlock()

	httpx.WriteJSON(w, http.StatusOK, OIDCLoginResponse{
		AuthorizationURL: g.srv.URL + "/dummy-oidc/auth?state=" + state,
		State:            state,
	})
}

func (g *fakeGateway) handleOIDCCallback(w http.ResponseWriter, r *http.Request) {
	var req OIDCCallbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		ErrInvalidRequest.WriteError(w)
		return
	}

	g.mu.Lock()
	pending := g.oidcState
	g.oidcState = ""
	access, refresh := g.accessValue, g.refreshValue
	identity := g.identity
	g.mu.Unlock()

	if pending == "" || req.State != pending {
		ErrStateMismatch.WriteError(w)
		return
	}
	if req.Code != "good-code" {
		ErrInvalidRequest.WriteError(w)
		return
	}

	g.setSessionCookies(w, access, refresh)
	httpx.WriteJSON(w, http.StatusOK, OIDCCallbackResponse{User: identity})
}
