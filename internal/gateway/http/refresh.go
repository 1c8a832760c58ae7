package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

type RefreshHandler struct {
	AuthService *service.AuthService
	Cookies     *CookieJar
	Metrics     *Metrics
}

// ServeHTTP exchanges the refresh token cookie for a new access token.
//
//	@Summary		Refresh the session
//	@Description	Mints a new access token from the refresh token cookie. The request
//	@Description	body may carry the refresh token instead for clients that cannot
//	@Description	send cookies. On failure both cookies are cleared: a dead refresh
//	@Description	token means the session is over.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	sessionsdk.MessageResponse
//	@Failure		401	{object}	sessionsdk.AuthError	"Refresh token invalid or expired"
//	@Failure		502	{object}	sessionsdk.AuthError	"Credential store unreachable"
//	@Router			/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	refreshToken := ReadRefreshToken(r)
	if refreshToken == "" {
		var req sessionsdk.RefreshRequest
		if err := httpx.DecodeJSON(r, &req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	refreshed, err := h.AuthService.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, sessionsdk.ErrRefreshFailed) {
			// The session is dead; take the cookies with it.
			h.Cookies.Clear(w)
		}
		if errors.Is(err, sessionsdk.ErrUpstreamUnreachable) {
			h.Metrics.upstreamFailure()
		}
		h.Metrics.refresh("failure")
		writeError(w, err)
		return
	}

	h.Metrics.refresh("success")
	h.Cookies.SetAccessToken(w, refreshed.AccessToken)
	if refreshed.RefreshToken != "" {
		h.Cookies.SetRefreshToken(w, refreshed.RefreshToken)
	}
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.MessageResponse{Message: "token refreshed"})
}
