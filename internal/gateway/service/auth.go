// Package service holds the gateway's business logic: brokering credentials
// and federated handshakes against the upstream credential store and mapping
// its failures onto the gateway's error taxonomy.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// AuthService handles credential logins, refreshes and identity lookups.
type AuthService struct {
	Upstream *upstream.Client
}

// Login exchanges credentials for a token pair. An upstream 401 means the
// credentials were rejected; that outcome is final and never retried.
func (s *AuthService) Login(ctx context.Context, username, password string) (*sessionsdk.TokenResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, sessionsdk.ErrInvalidRequest.WithDetail("username and password are required")
	}

	l := slogx.FromContext(ctx)

	tokens, err := s.Upstream.Login(ctx, username, password)
	if err != nil {
		if upstream.StatusOf(err) == http.StatusUnauthorized {
			l.Info("login rejected", slog.String("username", username))
			return nil, sessionsdk.ErrInvalidCredentials
		}
		return nil, mapUpstreamError(ctx, err)
	}

	l.Info("login succeeded", slog.String("username", username))
	return tokens, nil
}

// Refresh exchanges a refresh token for a new access token. Any upstream
// rejection of the token itself maps to ErrRefreshFailed, which tells the
// caller the session is dead and must be torn down.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*sessionsdk.RefreshResponse, error) {
	if refreshToken == "" {
		return nil, sessionsdk.ErrRefreshFailed
	}

	refreshed, err := s.Upstream.Refresh(ctx, refreshToken)
	if err != nil {
		status := upstream.StatusOf(err)
		if status == http.StatusUnauthorized || status == http.StatusBadRequest {
			slogx.FromContext(ctx).Info("refresh rejected by upstream", slog.Int("status", status))
			return nil, sessionsdk.ErrRefreshFailed
		}
		return nil, mapUpstreamError(ctx, err)
	}

	return refreshed, nil
}

// Identify resolves the identity behind an access token.
func (s *AuthService) Identify(ctx context.Context, accessToken string) (*sessionsdk.Identity, error) {
	if accessToken == "" {
		return nil, sessionsdk.ErrNotAuthenticated
	}

	identity, err := s.Upstream.Me(ctx, accessToken)
	if err != nil {
		if upstream.StatusOf(err) == http.StatusUnauthorized {
			return nil, sessionsdk.ErrNotAuthenticated
		}
		return nil, mapUpstreamError(ctx, err)
	}
	return identity, nil
}

// Register creates a new account. Upstream validation messages are passed
// through so the caller can tell a taken username from a weak password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*sessionsdk.Identity, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, sessionsdk.ErrInvalidRequest.WithDetail("username, email and password are required")
	}

	identity, err := s.Upstream.Register(ctx, username, email, password)
	if err != nil {
		if status := upstream.StatusOf(err); status >= 400 && status < 500 {
			var ue *upstream.Error
			detail := "registration rejected"
			if errors.As(err, &ue) {
				detail = ue.Detail
			}
			return nil, sessionsdk.NewAuthError(status, sessionsdk.ErrorCodeInvalidRequest, detail)
		}
		return nil, mapUpstreamError(ctx, err)
	}

	slogx.FromContext(ctx).Info("account registered", slog.String("username", username))
	return identity, nil
}

// Logout asks the upstream to revoke the session's tokens. Failures are
// logged and swallowed: logout must always succeed from the caller's point
// of view, the cookies are gone either way.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) {
	if err := s.Upstream.Logout(ctx, accessToken, refreshToken); err != nil {
		slogx.FromContext(ctx).Warn("upstream logout failed", slog.Any("error", err))
	}
}

// mapUpstreamError converts unexpected upstream failures to the gateway
// taxonomy. Transport failures and 5xx answers both mean the credential
// store is effectively unreachable.
func mapUpstreamError(ctx context.Context, err error) error {
	status := upstream.StatusOf(err)
	if status == 0 || status >= 500 {
		slogx.FromContext(ctx).Error("credential store unreachable", slog.Any("error", err))
		return sessionsdk.ErrUpstreamUnreachable
	}

	var ue *upstream.Error
	if errors.As(err, &ue) {
		return sessionsdk.NewAuthError(status, sessionsdk.ErrorCodeInvalidRequest, ue.Detail)
	}
	return sessionsdk.ErrServerError
}
