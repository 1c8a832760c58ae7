package sessionsdk

import (
	"context"
	"strings"
)

// FederatedStatus reports whether the gateway can offer federated login.
func (s *SessionService) FederatedStatus(ctx context.Context) (*OIDCStatus, error) {
	var status OIDCStatus
	if err := s.client.getJSON(ctx, "/auth/oidc/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// StartFederatedLogin begins an authorization-code login. It asks the
// gateway for an authorization URL and remembers the state nonce bound to
// it. Starting a new login while one is pending replaces the old nonce, so
// at most one federated login is outstanding per session.
//
// The caller is responsible for sending the user to AuthorizationURL.
func (s *SessionService) StartFederatedLogin(ctx context.Context) (*OIDCLoginResponse, error) {
	if err := s.beginOp(); err != nil {
		return nil, err
	}
	defer s.endOp()

	status, err := s.FederatedStatus(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Enabled || !status.Configured {
		return nil, ErrProviderUnavailable
	}

	var login OIDCLoginResponse
	if err := s.client.getJSON(ctx, "/auth/oidc/login", &login); err != nil {
		return nil, err
	}
	if login.State == "" || login.AuthorizationURL == "" {
		return nil, ErrServerError.WithDetail("provider returned an incomplete authorization response")
	}

	s.mu.Lock()
	s.oidcState = login.State
	s.mu.Unlock()

	return &login, nil
}

// CompleteFederatedLogin finishes an authorization-code login with the code
// and state returned by the provider. The state must match the pending login
// exactly; any mismatch, including a callback with no pending login, is
// rejected before the code is sent anywhere. The pending nonce is consumed
// either way, so a replayed callback fails too.
func (s *SessionService) CompleteFederatedLogin(ctx context.Context, code, state string) error {
	if strings.TrimSpace(code) == "" || strings.TrimSpace(state) == "" {
		return ErrInvalidRequest.WithDetail("code and state are required")
	}

	if err := s.beginOp(); err != nil {
		return err
	}
	defer s.endOp()

	s.mu.Lock()
	pending := s.oidcState
	s.oidcState = ""
	s.mu.Unlock()

	if pending == "" || state != pending {
		s.settleAnonymous()
		return ErrStateMismatch
	}

	req := OIDCCallbackRequest{Code: code, State: state}
	var resp OIDCCallbackResponse
	if err := s.client.postJSON(ctx, "/auth/oidc/callback", req, &resp); err != nil {
		s.settleAnonymous()
		return err
	}

	identity, err := s.fetchIdentity(ctx)
	if err != nil {
		_ = s.client.postJSON(ctx, "/auth/logout", nil, nil)
		s.setAnonymous()
		return err
	}

	s.setAuthenticated(identity)
	return nil
}
