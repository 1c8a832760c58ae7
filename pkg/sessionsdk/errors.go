package sessionsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
)

// Error codes shared between the gateway and the SDK. These form the wire
// contract: the gateway writes them, the SDK parses them back into typed
// errors.
const (
	ErrorCodeInvalidRequest      = "invalid_request"
	ErrorCodeInvalidCredentials  = "invalid_credentials"
	ErrorCodeNotAuthenticated    = "not_authenticated"
	ErrorCodeRefreshFailed       = "refresh_failed"
	ErrorCodeStateMismatch       = "csrf_state_mismatch"
	ErrorCodeProviderUnavailable = "provider_unavailable"
	ErrorCodeUpstreamUnreachable = "upstream_unreachable"
	ErrorCodeOperationInProgress = "operation_in_progress"
	ErrorCodeServerError         = "server_error"
)

// AuthError is the gateway's error envelope. It implements the error
// interface and is used both by the server (to write HTTP responses) and by
// the SDK client (to represent failures).
type AuthError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g. "invalid_credentials")
	Code string `json:"code"`

	// Detail is a human-readable description of the error
	Detail string `json:"detail"`
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Is matches AuthErrors by code, so parsed responses compare equal to the
// predefined sentinel values via errors.Is.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

// WithDetail returns a copy of the error carrying a more specific message.
func (e *AuthError) WithDetail(detail string) *AuthError {
	return &AuthError{
		StatusCode: e.StatusCode,
		Code:       e.Code,
		Detail:     detail,
	}
}

// WriteError writes this AuthError to an HTTP response writer.
func (e *AuthError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// Predefined errors covering the gateway's failure taxonomy.
var (
	// ErrInvalidRequest is returned when the request is missing a required
	// parameter or is otherwise malformed.
	ErrInvalidRequest = &AuthError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeInvalidRequest,
		Detail:     "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned when the credential store rejects a
	// username/password pair. Never retried automatically.
	ErrInvalidCredentials = &AuthError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Detail:     "incorrect username or password",
	}

	// ErrNotAuthenticated is returned when no valid access token accompanies
	// a protected request and no refresh is possible.
	ErrNotAuthenticated = &AuthError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeNotAuthenticated,
		Detail:     "authentication required",
	}

	// ErrRefreshFailed is returned when the refresh token is invalid,
	// expired or revoked. The session is torn down; the user must sign in
	// again.
	ErrRefreshFailed = &AuthError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeRefreshFailed,
		Detail:     "session expired, please sign in again",
	}

	// ErrStateMismatch is returned when a federated callback presents a
	// state value that does not match the pending login. Hard failure, CSRF
	// defense.
	ErrStateMismatch = &AuthError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrorCodeStateMismatch,
		Detail:     "state parameter does not match the pending login",
	}

	// ErrProviderUnavailable is returned when federated login is disabled or
	// not configured.
	ErrProviderUnavailable = &AuthError{
		StatusCode: http.StatusServiceUnavailable,
		Code:       ErrorCodeProviderUnavailable,
		Detail:     "federated login is not available",
	}

	// ErrUpstreamUnreachable is returned when the credential store cannot be
	// reached or answers with a 5xx.
	ErrUpstreamUnreachable = &AuthError{
		StatusCode: http.StatusBadGateway,
		Code:       ErrorCodeUpstreamUnreachable,
		Detail:     "authentication service is unavailable",
	}

	// ErrOperationInProgress is returned by the session service when a
	// second mutating operation is attempted while one is already in flight.
	ErrOperationInProgress = &AuthError{
		StatusCode: http.StatusConflict,
		Code:       ErrorCodeOperationInProgress,
		Detail:     "another session operation is in progress",
	}

	// ErrServerError is returned for unexpected internal failures.
	ErrServerError = &AuthError{
		StatusCode: http.StatusInternalServerError,
		Code:       ErrorCodeServerError,
		Detail:     "internal server error",
	}
)

// NewAuthError creates an AuthError with a custom status, code and detail.
func NewAuthError(statusCode int, code, detail string) *AuthError {
	return &AuthError{
		StatusCode: statusCode,
		Code:       code,
		Detail:     detail,
	}
}

// parseErrorResponse turns a non-2xx HTTP response body into a typed error.
// It understands the gateway's {code, detail} envelope and falls back to the
// upstream credential store's bare {detail} shape.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var envelope struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Code != "" {
		return &AuthError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Code,
			Detail:     envelope.Detail,
		}
	}
	if envelope.Detail != "" {
		return &AuthError{
			StatusCode: resp.StatusCode,
			Code:       codeForStatus(resp.StatusCode),
			Detail:     envelope.Detail,
		}
	}

	return &AuthError{
		StatusCode: resp.StatusCode,
		Code:       codeForStatus(resp.StatusCode),
		Detail:     fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

func codeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return ErrorCodeNotAuthenticated
	case status >= 500:
		return ErrorCodeUpstreamUnreachable
	default:
		return ErrorCodeInvalidRequest
	}
}
