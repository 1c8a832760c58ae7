package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
)

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP resolves the identity behind the session cookie.
//
//	@Summary		Get the current identity
//	@Description	Returns the identity bound to the access token cookie. A 401 means
//	@Description	the token is missing or expired; clients should attempt a refresh
//	@Description	and retry once.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	sessionsdk.Identity
//	@Failure		401	{object}	sessionsdk.AuthError	"No valid session"
//	@Failure		502	{object}	sessionsdk.AuthError	"Credential store unreachable"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := h.AuthService.Identify(r.Context(), ReadAccessToken(r))
	if err != nil {
		writeError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identity)
}
