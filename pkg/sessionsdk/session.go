package sessionsdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
)

// State is the session's authentication state.
type State string

const (
	// StateLoading means the session has not been resolved yet. UI callers
	// should hold rendering decisions until Bootstrap completes.
	StateLoading State = "loading"

	// StateAnonymous means no valid session exists.
	StateAnonymous State = "anonymous"

	// StateAuthenticated means a session exists and an Identity is available.
	StateAuthenticated State = "authenticated"
)

// SessionService tracks the authenticated identity for a single client. It
// is the process-wide source of truth for "who is signed in": state moves
// between Loading, Anonymous and Authenticated, and the Identity snapshot is
// replaced wholesale on every transition.
//
// All methods are safe for concurrent use. Mutating operations (Login,
// Logout, Refresh, federated login) are serialized; a second caller gets
// ErrOperationInProgress instead of queueing.
type SessionService struct {
	client *SDKClient

	mu       sync.RWMutex
	state    State
	identity *Identity
	opBusy   bool

	// refresh single-flight, shared with the protected transport
	refreshMu sync.Mutex
	inflight  *refreshCall

	// pending federated login state, at most one outstanding
	oidcState string
}

func newSessionService(client *SDKClient) *SessionService {
	return &SessionService{
		client: client,
		state:  StateLoading,
	}
}

// State returns the current session state.
func (s *SessionService) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity returns the current identity snapshot, or nil when not
// authenticated.
func (s *SessionService) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

// IsLoading reports whether the session has not been bootstrapped yet.
func (s *SessionService) IsLoading() bool {
	return s.State() == StateLoading
}

// IsAuthenticated reports whether a session is established.
func (s *SessionService) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// IsModerator reports whether the current identity has moderation rights.
// False when not authenticated.
func (s *SessionService) IsModerator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && s.identity.Role.IsModerator()
}

// IsAdmin reports whether the current identity has administrative rights.
// False when not authenticated.
func (s *SessionService) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && s.identity.Role.IsAdmin()
}

// beginOp claims the mutating-operation slot. Callers must pair it with
// endOp. Returns ErrOperationInProgress when another operation holds it.
func (s *SessionService) beginOp() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opBusy {
		return ErrOperationInProgress
	}
	s.opBusy = true
	return nil
}

func (s *SessionService) endOp() {
	s.mu.Lock()
	s.opBusy = false
	s.mu.Unlock()
}

// setAuthenticated installs a new identity snapshot.
func (s *SessionService) setAuthenticated(identity *Identity) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.identity = identity
	s.mu.Unlock()
}

// setAnonymous drops the identity. Local cookies are cleared as well so the
// jar and the state can never disagree.
func (s *SessionService) setAnonymous() {
	s.mu.Lock()
	s.state = StateAnonymous
	s.identity = nil
	s.mu.Unlock()
	s.client.clearSessionCookies()
}

// settleAnonymous resolves a still-loading session to Anonymous. A rejected
// login attempt must leave the session in a settled state, but it must not
// tear down a session that was already established.
func (s *SessionService) settleAnonymous() {
	s.mu.Lock()
	if s.state == StateLoading {
		s.state = StateAnonymous
	}
	s.mu.Unlock()
}

// Bootstrap resolves the initial session state by probing the identity
// endpoint. A valid cookie yields Authenticated; anything else, including an
// expired session that could not be refreshed, yields Anonymous. Bootstrap
// never returns an authentication error, only transport-level failures.
func (s *SessionService) Bootstrap(ctx context.Context) error {
	identity, err := s.fetchIdentity(ctx)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) && authErr.StatusCode < 500 &&
			authErr.Code != ErrorCodeUpstreamUnreachable {
			s.setAnonymous()
			return nil
		}
		s.settleAnonymous()
		return err
	}

	s.setAuthenticated(identity)
	return nil
}

// Login exchanges a username and password for a cookie session and resolves
// the identity behind it. Empty fields fail fast without a network call.
// When the cookies are set but the identity probe fails, the half-open
// session is torn down before the error is returned.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrInvalidRequest.WithDetail("username and password are required")
	}

	if err := s.beginOp(); err != nil {
		return err
	}
	defer s.endOp()

	req := LoginRequest{Username: username, Password: password}
	if err := s.client.postJSON(ctx, "/auth/login", req, nil); err != nil {
		s.settleAnonymous()
		return err
	}

	identity, err := s.fetchIdentity(ctx)
	if err != nil {
		// Cookies were set but the identity probe failed. Roll the
		// session back rather than leaving it half-open.
		_ = s.client.postJSON(ctx, "/auth/logout", nil, nil)
		s.setAnonymous()
		return err
	}

	s.setAuthenticated(identity)
	return nil
}

// Logout tears the session down. The gateway is asked to clear its cookies,
// but local teardown happens unconditionally: even when the gateway is
// unreachable the state becomes Anonymous and the jar is emptied. Logout is
// idempotent and never fails.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.beginOp(); err != nil {
		return
	}
	defer s.endOp()

	_ = s.client.postJSON(ctx, "/auth/logout", nil, nil)
	s.setAnonymous()
}

// Refresh forces a token refresh and re-resolves the identity. On refresh
// failure the session is torn down and ErrRefreshFailed is returned.
func (s *SessionService) Refresh(ctx context.Context) error {
	if err := s.beginOp(); err != nil {
		return err
	}
	defer s.endOp()

	if err := s.refreshTokens(ctx); err != nil {
		s.setAnonymous()
		return err
	}

	identity, err := s.fetchIdentity(ctx)
	if err != nil {
		s.setAnonymous()
		return err
	}

	s.setAuthenticated(identity)
	return nil
}

// fetchIdentity probes the identity endpoint through the protected
// transport, so an expired access token is refreshed transparently.
func (s *SessionService) fetchIdentity(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := s.doProtectedJSON(ctx, http.MethodGet, "/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
