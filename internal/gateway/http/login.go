package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

type LoginHandler struct {
	AuthService *service.AuthService
	Cookies     *CookieJar
	Metrics     *Metrics
}

// ServeHTTP handles credential login.
//
//	@Summary		Log in with username and password
//	@Description	Verifies credentials against the credential store and establishes
//	@Description	a cookie session. Tokens are set as HttpOnly cookies and never appear
//	@Description	in the response body.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	sessionsdk.MessageResponse
//	@Failure		400		{object}	sessionsdk.AuthError	"Malformed request"
//	@Failure		401		{object}	sessionsdk.AuthError	"Invalid credentials"
//	@Failure		502		{object}	sessionsdk.AuthError	"Credential store unreachable"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req sessionsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	tokens, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, sessionsdk.ErrUpstreamUnreachable) {
			h.Metrics.upstreamFailure()
		}
		h.Metrics.login("failure")
		writeError(w, err)
		return
	}

	h.Metrics.login("success")
	h.Cookies.SetTokens(w, tokens.AccessToken, tokens.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.MessageResponse{Message: "login successful"})
}

type LogoutHandler struct {
	AuthService *service.AuthService
	Cookies     *CookieJar
}

// ServeHTTP handles logout.
//
//	@Summary		Log out
//	@Description	Clears the session cookies and asks the credential store to revoke
//	@Description	the tokens. Always succeeds, even without an active session.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	sessionsdk.MessageResponse
//	@Router			/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accessToken := ReadAccessToken(r)
	refreshToken := ReadRefreshToken(r)
	if accessToken != "" || refreshToken != "" {
		h.AuthService.Logout(r.Context(), accessToken, refreshToken)
	}

	h.Cookies.Clear(w)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.MessageResponse{Message: "logged out"})
}

type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP handles account registration.
//
//	@Summary		Register a new account
//	@Description	Creates an account in the credential store. Registration does not
//	@Description	establish a session; log in afterwards.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	sessionsdk.Identity
//	@Failure		400		{object}	sessionsdk.AuthError	"Validation failed"
//	@Failure		502		{object}	sessionsdk.AuthError	"Credential store unreachable"
//	@Router			/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req sessionsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	identity, err := h.AuthService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, identity)
}
