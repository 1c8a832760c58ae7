package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

type RevalidateHandler struct {
	Secret  string
	Metrics *Metrics
}

// ServeHTTP handles the content revalidation webhook.
//
//	@Summary		Revalidate cached content
//	@Description	Called by trusted backends after identity-bearing writes so cached
//	@Description	pages tied to the named action are rebuilt. Authenticated by a
//	@Description	shared secret, compared in constant time.
//	@Tags			System
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.RevalidateRequest	true	"Action, optional slug, shared secret"
//	@Success		200		{object}	sessionsdk.MessageResponse
//	@Failure		400		{object}	sessionsdk.AuthError	"Malformed request"
//	@Failure		403		{object}	sessionsdk.AuthError	"Bad secret"
//	@Router			/revalidate [post].
func (h *RevalidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	if h.Secret == "" {
		// Webhook disabled without a configured secret.
		sessionsdk.NewAuthError(http.StatusForbidden, sessionsdk.ErrorCodeInvalidRequest,
			"revalidation is not enabled").WriteError(w)
		return
	}

	var req sessionsdk.RevalidateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Action == "" {
		sessionsdk.ErrInvalidRequest.WithDetail("action is required").WriteError(w)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.Secret)) != 1 {
		log.Warn("revalidation request with bad secret", slog.String("action", req.Action))
		sessionsdk.NewAuthError(http.StatusForbidden, sessionsdk.ErrorCodeInvalidRequest,
			"invalid revalidation secret").WriteError(w)
		return
	}

	h.Metrics.revalidation()
	log.Info("revalidation accepted",
		slog.String("action", req.Action),
		slog.String("slug", req.Slug),
	)
	httpx.WriteJSON(w, http.StatusOK, sessionsdk.MessageResponse{Message: "revalidation scheduled"})
}
