package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

type OIDCHandler struct {
	FederatedService *service.FederatedService
	Cookies          *CookieJar
	Metrics          *Metrics
}

// HandleStatus reports federated login availability. It never errors: when
// the credential store cannot be reached the provider is simply reported as
// unavailable, so clients hide the federated option instead of breaking.
//
//	@Summary		Federated login availability
//	@Description	Reports whether a federated identity provider is enabled and
//	@Description	configured. Clients use this to decide whether to offer the
//	@Description	federated login option at all. Falls back to disabled when the
//	@Description	credential store is unreachable.
//	@Tags			OIDC
//	@Produce		json
//	@Success		200	{object}	sessionsdk.OIDCStatus
//	@Router			/auth/oidc/status [get].
func (h *OIDCHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.FederatedService.Status(r.Context())
	if err != nil {
		slogx.FromContext(r.Context()).Warn("federated status probe failed", "error", err)
		status = &sessionsdk.OIDCStatus{}
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}

// HandleLogin starts an authorization-code flow.
//
//	@Summary		Start a federated login
//	@Description	Returns the provider authorization URL and the CSRF state value
//	@Description	bound to it. The state is held server side until the callback
//	@Description	arrives and is valid for a single use.
//	@Tags			OIDC
//	@Produce		json
//	@Success		200	{object}	sessionsdk.OIDCLoginResponse
//	@Failure		503	{object}	sessionsdk.AuthError	"Provider not available"
//	@Failure		502	{object}	sessionsdk.AuthError	"Credential store unreachable"
//	@Router			/auth/oidc/login [get].
func (h *OIDCHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	login, err := h.FederatedService.Begin(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, login)
}

// HandleCallback completes an authorization-code flow.
//
//	@Summary		Complete a federated login
//	@Description	Exchanges the provider's code for tokens after verifying the state
//	@Description	value against the pending login. A state mismatch is a hard failure.
//	@Description	On success the session cookies are set, exactly as with a
//	@Description	credential login.
//	@Tags			OIDC
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.OIDCCallbackRequest	true	"Code and state from the provider"
//	@Success		200		{object}	sessionsdk.OIDCCallbackResponse
//	@Failure		400		{object}	sessionsdk.AuthError	"State mismatch or rejected code"
//	@Failure		502		{object}	sessionsdk.AuthError	"Credential store unreachable"
//	@Router			/auth/oidc/callback [post].
func (h *OIDCHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var req sessionsdk.OIDCCallbackRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.FederatedService.Complete(r.Context(), req.Code, req.State)
	if err != nil {
		if errors.Is(err, sessionsdk.ErrUpstreamUnreachable) {
			h.Metrics.upstreamFailure()
		}
		h.Metrics.federated("failure")
		writeError(w, err)
		return
	}

	h.Metrics.federated("success")
	h.Cookies.SetTokens(w, result.AccessToken, result.RefreshToken)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.OIDCCallbackResponse{User: *result.User})
}
