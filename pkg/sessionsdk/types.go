package sessionsdk

// Session cookie names. The gateway's cookie jar and the SDK's cookie
// inspection helpers are the only places allowed to reference these.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// Role is the coarse authorization level carried by an Identity.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// IsModerator reports whether the role grants moderation rights.
// Admins moderate too.
func (r Role) IsModerator() bool {
	return r == RoleModerator || r == RoleAdmin
}

// IsAdmin reports whether the role grants administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Identity is the authenticated user as reported by the credential store.
// It is replaced wholesale on every session transition, never mutated.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and by the upstream token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh when the refresh token is
// not supplied via cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the newly minted access token. The refresh token is
// only present when the credential store rotated it.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// MessageResponse is a generic informational response, e.g. from logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// OIDCStatus reports whether federated login can be offered at all.
type OIDCStatus struct {
	Enabled    bool `json:"enabled"`
	Configured bool `json:"configured"`
}

// OIDCLoginResponse is returned by GET /auth/oidc/login. The state value is
// the single-use CSRF nonce bound to this authorization request.
type OIDCLoginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// OIDCCallbackRequest is the body of POST /auth/oidc/callback.
type OIDCCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// OIDCCallbackResponse is returned on a successful code exchange. The tokens
// themselves travel only as Set-Cookie headers.
type OIDCCallbackResponse struct {
	User Identity `json:"user"`
}

// RevalidateRequest is the body of POST /revalidate, used by trusted backends
// to invalidate cached content after identity-bearing writes.
type RevalidateRequest struct {
	Action string `json:"action"`
	Slug   string `json:"slug,omitempty"`
	Secret string `json:"secret"`
}

// HealthChecks reports the status of the gateway's critical dependencies.
type HealthChecks struct {
	NonceStore string `json:"nonce_store,omitempty"`
	Upstream   string `json:"upstream,omitempty"`
}

// HealthResponse is returned by the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
