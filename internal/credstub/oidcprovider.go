package credstub

import (
	"net/http"
	"net/url"
	"time"

	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/idx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

// federatedUsername is the account every dummy-provider login resolves to.
// It is provisioned on first use.
const federatedUsername = "sso.user"

const pendingStateTTL = 10 * time.Minute

// registerOIDC adds the federated login endpoints plus the dummy provider
// they hand off to. The provider lives in the same process purely so a full
// authorization-code round trip can be exercised without external services.
func (s *Server) registerOIDC() {
	s.Mux.HandleFunc("GET /api/auth/oidc/status", s.handleOIDCStatus)
	s.Mux.HandleFunc("GET /api/auth/oidc/login", s.handleOIDCLogin)
	s.Mux.HandleFunc("POST /api/auth/oidc/callback", s.handleOIDCCallback)

	s.Mux.HandleFunc("GET /dummy-oidc/auth", s.handleProviderAuth)
	s.Mux.HandleFunc("POST /dummy-oidc/token", s.handleProviderToken)
}

func (s *Server) handleOIDCStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.OIDCStatus{
		Enabled:    s.cfg.OIDCEnabled,
		Configured: s.cfg.OIDCEnabled,
	})
}

// handleOIDCLogin starts an authorization flow: it mints a state nonce and
// points the caller at the dummy provider's authorization endpoint.
func (s *Server) handleOIDCLogin(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.OIDCEnabled {
		writeDetail(w, http.StatusServiceUnavailable, "OIDC is not enabled")
		return
	}

	state := idx.New().String()

	s.mu.Lock()
	s.pendingStates[state] = time.Now().Add(pendingStateTTL)
	s.mu.Unlock()

	authURL := s.cfg.BaseURL + "/dummy-oidc/auth?" + url.Values{
		"state":         {state},
		"response_type": {"code"},
		"client_id":     {"credstub-dev"},
	}.Encode()

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.OIDCLoginResponse{
		AuthorizationURL: authURL,
		State:            state,
	})
}

// handleOIDCCallback exchanges an authorization code for a token pair. The
// state must match a pending login and is consumed on first use.
func (s *Server) handleOIDCCallback(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.OIDCEnabled {
		writeDetail(w, http.StatusServiceUnavailable, "OIDC is not enabled")
		return
	}

	var req sessionsdk.OIDCCallbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Code == "" || req.State == "" {
		writeDetail(w, http.StatusBadRequest, "code and state are required")
		return
	}

	s.mu.Lock()
	expiry, stateKnown := s.pendingStates[req.State]
	delete(s.pendingStates, req.State)
	username, codeKnown := s.pendingCodes[req.Code]
	delete(s.pendingCodes, req.Code)
	s.mu.Unlock()

	if !stateKnown || time.Now().After(expiry) {
		writeDetail(w, http.StatusBadRequest, "Invalid state")
		return
	}
	if !codeKnown {
		writeDetail(w, http.StatusBadRequest, "Invalid authorization code")
		return
	}

	user, err := s.federatedAccount(r, username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to provision account")
		return
	}

	access, refresh, err := s.issuer.MintPair(user.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to mint tokens")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, struct {
		AccessToken  string              `json:"access_token"`
		RefreshToken string              `json:"refresh_token"`
		User         sessionsdk.Identity `json:"user"`
	}{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.Identity(),
	})
}

// handleProviderAuth plays the external provider's authorization endpoint.
// It skips the consent screen entirely and redirects straight back with a
// one-time code bound to the fixed federated account.
func (s *Server) handleProviderAuth(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeDetail(w, http.StatusBadRequest, "state is required")
		return
	}

	code := idx.New().String()

	s.mu.Lock()
	s.pendingCodes[code] = federatedUsername
	s.mu.Unlock()

	redirectURI := r.URL.Query().Get("redirect_uri")
	if redirectURI == "" {
		// No redirect target registered; hand the code back directly so
		// non-browser clients can complete the flow.
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"code": code, "state": state})
		return
	}

	target := redirectURI + "?" + url.Values{"code": {code}, "state": {state}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}

// handleProviderToken is the provider's token endpoint. The callback handler
// above short-circuits it in practice, but real OIDC clients expect it.
func (s *Server) handleProviderToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}
	code := r.PostFormValue("code")

	s.mu.Lock()
	username, ok := s.pendingCodes[code]
	delete(s.pendingCodes, code)
	s.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusBadRequest, "Invalid authorization code")
		return
	}

	user, err := s.federatedAccount(r, username)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to provision account")
		return
	}

	access, refresh, err := s.issuer.MintPair(user.ID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to mint tokens")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	})
}

// federatedAccount fetches the federated user, creating it on first login.
func (s *Server) federatedAccount(r *http.Request, username string) (*User, error) {
	user, err := s.users.GetByUsername(r.Context(), username)
	if err == nil {
		return user, nil
	}
	return s.users.Create(r.Context(), username, username+"@sso.example.com", idx.New().String())
}
