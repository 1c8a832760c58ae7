package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/store"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// FederatedService runs the gateway's side of the authorization-code flow.
// The state nonce minted at the start of a flow lives in the NonceStore
// until the callback consumes it; a callback whose state is not pending is
// rejected outright.
type FederatedService struct {
	Upstream *upstream.Client
	Nonces   store.NonceStore
	NonceTTL time.Duration
}

// FederatedLogin is a completed code exchange: a token pair plus the
// identity behind it.
type FederatedLogin struct {
	AccessToken  string
	RefreshToken string
	User         *sessionsdk.Identity
}

// Status reports whether federated login is available.
func (s *FederatedService) Status(ctx context.Context) (*sessionsdk.OIDCStatus, error) {
	status, err := s.Upstream.OIDCStatus(ctx)
	if err != nil {
		return nil, mapUpstreamError(ctx, err)
	}
	return status, nil
}

// Begin starts an authorization-code flow. It refuses when the provider is
// not available, then records the upstream's state nonce so the callback can
// be tied back to this start.
func (s *FederatedService) Begin(ctx context.Context) (*sessionsdk.OIDCLoginResponse, error) {
	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Enabled || !status.Configured {
		return nil, sessionsdk.ErrProviderUnavailable
	}

	login, err := s.Upstream.OIDCLogin(ctx)
	if err != nil {
		return nil, mapUpstreamError(ctx, err)
	}

	now := time.Now()
	err = s.Nonces.Save(ctx, store.Nonce{
		State:     login.State,
		CreatedAt: now,
		ExpiresAt: now.Add(s.NonceTTL),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to persist login state", slog.Any("error", err))
		return nil, sessionsdk.ErrServerError
	}

	slogx.FromContext(ctx).Info("federated login started")
	return login, nil
}

// Complete finishes an authorization-code flow. The state must name a
// pending nonce; consuming it is atomic, so a replayed or forged callback
// fails before the code is ever forwarded upstream.
func (s *FederatedService) Complete(ctx context.Context, code, state string) (*FederatedLogin, error) {
	if code == "" || state == "" {
		return nil, sessionsdk.ErrInvalidRequest.WithDetail("code and state are required")
	}

	l := slogx.FromContext(ctx)

	if _, err := s.Nonces.Consume(ctx, state); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Warn("federated callback with unknown state")
			return nil, sessionsdk.ErrStateMismatch
		}
		l.Error("failed to consume login state", slog.Any("error", err))
		return nil, sessionsdk.ErrServerError
	}

	result, err := s.Upstream.OIDCExchange(ctx, code, state)
	if err != nil {
		if status := upstream.StatusOf(err); status >= 400 && status < 500 {
			var ue *upstream.Error
			detail := "authorization code exchange rejected"
			if errors.As(err, &ue) {
				detail = ue.Detail
			}
			l.Warn("code exchange rejected", slog.Int("status", status))
			return nil, sessionsdk.NewAuthError(http.StatusBadRequest, sessionsdk.ErrorCodeInvalidRequest, detail)
		}
		return nil, mapUpstreamError(ctx, err)
	}

	user := result.User
	if user == nil {
		// Redirect-style exchanges carry only tokens; resolve the
		// identity with the access token we just received.
		user, err = s.Upstream.Me(ctx, result.AccessToken)
		if err != nil {
			return nil, mapUpstreamError(ctx, err)
		}
	}

	l.Info("federated login completed", slog.String("username", user.Username))
	return &FederatedLogin{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         user,
	}, nil
}
