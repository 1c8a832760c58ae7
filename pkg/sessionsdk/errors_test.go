package sessionsdk

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthErrorIs(t *testing.T) {
	t.Parallel()

	parsed := &AuthError{
		StatusCode: http.StatusUnauthorized,
		Code:       ErrorCodeInvalidCredentials,
		Detail:     "nope",
	}
	require.ErrorIs(t, parsed, ErrInvalidCredentials)
	require.NotErrorIs(t, parsed, ErrNotAuthenticated)

	wrapped := &AuthError{Code: ErrorCodeRefreshFailed}
	require.ErrorIs(t, wrapped, ErrRefreshFailed)
}

func TestWithDetail(t *testing.T) {
	t.Parallel()

	err := ErrUpstreamUnreachable.WithDetail("connection refused")
	require.ErrorIs(t, err, ErrUpstreamUnreachable)
	require.Equal(t, "connection refused", err.Detail)

	// The sentinel itself is untouched.
	require.NotEqual(t, "connection refused", ErrUpstreamUnreachable.Detail)
}

func TestWriteError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	ErrStateMismatch.WriteError(rec)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t,
		`{"code":"csrf_state_mismatch","detail":"state parameter does not match the pending login"}`,
		rec.Body.String())
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{
			name:     "gateway envelope",
			status:   http.StatusUnauthorized,
			body:     `{"code":"invalid_credentials","detail":"incorrect username or password"}`,
			wantCode: ErrorCodeInvalidCredentials,
		},
		{
			name:     "bare detail maps by status",
			status:   http.StatusUnauthorized,
			body:     `{"detail":"Not authenticated"}`,
			wantCode: ErrorCodeNotAuthenticated,
		},
		{
			name:     "bare detail on server error",
			status:   http.StatusBadGateway,
			body:     `{"detail":"upstream exploded"}`,
			wantCode: ErrorCodeUpstreamUnreachable,
		},
		{
			name:     "unparseable body falls back to status text",
			status:   http.StatusServiceUnavailable,
			body:     `<html>downstream proxy error</html>`,
			wantCode: ErrorCodeUpstreamUnreachable,
		},
		{
			name:     "non-401 client error",
			status:   http.StatusUnprocessableEntity,
			body:     `{"detail":"validation failed"}`,
			wantCode: ErrorCodeInvalidRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			resp := &http.Response{StatusCode: tc.status}
			err := parseErrorResponse(resp, []byte(tc.body))
			require.Error(t, err)

			var authErr *AuthError
			require.True(t, errors.As(err, &authErr))
			require.Equal(t, tc.wantCode, authErr.Code)
			require.Equal(t, tc.status, authErr.StatusCode)
		})
	}

	t.Run("2xx yields nil", func(t *testing.T) {
		t.Parallel()
		resp := &http.Response{StatusCode: http.StatusOK}
		require.NoError(t, parseErrorResponse(resp, []byte(`{"ok":true}`)))
	})
}
