// Package credstub is a self-contained development credential store. It
// speaks the upstream API the gateway brokers against: password logins,
// token refresh, identity lookup and a dummy federated provider. It exists
// so the gateway can be run and tested without a real identity backend.
package credstub

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// Config holds the credstub's settings.
type Config struct {
	JWTSecret    string
	Issuer       string
	DatabaseFile string
	OIDCEnabled  bool
	AccessTTL    time.Duration
	RefreshTTL   time.Duration

	// BaseURL is where the credstub itself is reachable; the dummy
	// provider's authorization URLs point back at it.
	BaseURL string
}

// Server is the credential store HTTP surface.
type Server struct {
	Mux *http.ServeMux

	cfg    Config
	logger *slog.Logger
	users  *UserStore
	issuer *TokenIssuer

	mu            sync.Mutex
	revoked       map[string]struct{} // revoked refresh tokens
	pendingStates map[string]time.Time
	pendingCodes  map[string]string // code -> username
}

// NewServer opens the user store and builds the route table.
func NewServer(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "credstub"
	}

	users, err := OpenUserStore(cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Mux:    http.NewServeMux(),
		cfg:    cfg,
		logger: logger,
		users:  users,
		issuer: &TokenIssuer{
			Secret:     []byte(cfg.JWTSecret),
			Issuer:     cfg.Issuer,
			AccessTTL:  cfg.AccessTTL,
			RefreshTTL: cfg.RefreshTTL,
		},
		revoked:       make(map[string]struct{}),
		pendingStates: make(map[string]time.Time),
		pendingCodes:  make(map[string]string),
	}

	s.Mux.HandleFunc("POST /api/auth/token", s.handleToken)
	s.Mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	s.Mux.HandleFunc("GET /api/auth/me", s.handleMe)
	s.Mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.Mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.registerOIDC()

	return s, nil
}

// ServeHTTP implements http.Handler with the request-ID logging middleware
// applied.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.Chain(s.Mux, slogx.HTTPMiddleware(s.logger)).ServeHTTP(w, r)
}

// Close releases the user store.
func (s *Server) Close() error { return s.users.Close() }

// SetBaseURL overrides where the credstub advertises itself. Tests bind to an
// ephemeral port and only learn the address after the listener is up.
func (s *Server) SetBaseURL(baseURL string) { s.cfg.BaseURL = baseURL }

// writeDetail mirrors the FastAPI error shape the gateway's upstream client
// understands.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	httpx.WriteJSON(w, status, map[string]string{"detail": detail})
}

// handleToken implements the OAuth2 password-grant shaped login endpoint.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form body")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.users.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrBadPassword) {
			writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !user.IsActive {
		writeDetail(w, http.StatusUnauthorized, "Account is disabled")
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

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req sessionsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeDetail(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	s.mu.Lock()
	_, isRevoked := s.revoked[req.RefreshToken]
	s.mu.Unlock()
	if isRevoked {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	userID, err := s.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	access, err := s.issuer.MintAccess(userID)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "failed to mint token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.RefreshResponse{AccessToken: access})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.bearerSubject(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Identity())
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req sessionsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.users.Create(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			writeDetail(w, http.StatusBadRequest, "Username already registered")
			return
		}
		writeDetail(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, user.Identity())
}

// handleLogout revokes the refresh token named in the body, when given. The
// endpoint always answers 200; logout is not allowed to fail.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req sessionsdk.RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err == nil && req.RefreshToken != "" {
		s.mu.Lock()
		s.revoked[req.RefreshToken] = struct{}{}
		s.mu.Unlock()
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.MessageResponse{Message: "logged out"})
}

// bearerSubject extracts and verifies the bearer access token.
func (s *Server) bearerSubject(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	userID, err := s.issuer.VerifyAccess(token)
	if err != nil {
		return "", false
	}
	return userID, true
}
