package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	t.Run("success sets cookies and hides tokens", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/token", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt"}`))
		})

		h := &LoginHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"username":"alice","password":"secret"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotContains(t, rec.Body.String(), "at")
		require.NotContains(t, rec.Body.String(), "rt")

		cookies := rec.Result().Cookies()
		require.Equal(t, "at", cookieByName(t, cookies, sessionsdk.AccessTokenCookie).Value)
		require.Equal(t, "rt", cookieByName(t, cookies, sessionsdk.RefreshTokenCookie).Value)
	})

	t.Run("bad credentials yield 401 without cookies", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
		})

		h := &LoginHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"username":"alice","password":"wrong"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), sessionsdk.ErrorCodeInvalidCredentials)
		require.Empty(t, rec.Result().Cookies())
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		t.Parallel()

		_, svc := newAuthService(t)
		h := &LoginHandler{AuthService: svc, Cookies: testJar()}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("not json"))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unreachable upstream yields 502", func(t *testing.T) {
		t.Parallel()

		svc := deadAuthService()
		h := &LoginHandler{AuthService: svc, Cookies: testJar()}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"username":"alice","password":"secret"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Contains(t, rec.Body.String(), sessionsdk.ErrorCodeUpstreamUnreachable)
		require.Empty(t, rec.Result().Cookies())
	})
}

func TestLogoutHandler(t *testing.T) {
	t.Parallel()

	t.Run("clears cookies and revokes upstream", func(t *testing.T) {
		t.Parallel()

		revoked := false
		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer at", r.Header.Get("Authorization"))

			// The refresh token is the credential the store revokes; the
			// gateway must forward it from the cookie.
			var req sessionsdk.RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "rt", req.RefreshToken)

			revoked = true
			_, _ = w.Write([]byte(`{"message":"ok"}`))
		})

		h := &LogoutHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.AccessTokenCookie, Value: "at"})
		req.AddCookie(&http.Cookie{Name: sessionsdk.RefreshTokenCookie, Value: "rt"})
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, revoked)
		for _, c := range rec.Result().Cookies() {
			require.Equal(t, -1, c.MaxAge)
		}
	})

	t.Run("succeeds without a session", func(t *testing.T) {
		t.Parallel()

		_, svc := newAuthService(t)
		h := &LogoutHandler{AuthService: svc, Cookies: testJar()}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("succeeds when upstream is down", func(t *testing.T) {
		t.Parallel()

		h := &LogoutHandler{AuthService: deadAuthService(), Cookies: testJar()}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.AccessTokenCookie, Value: "at"})
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMeHandler(t *testing.T) {
	t.Parallel()

	t.Run("returns the identity", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"user_id":"u1","username":"alice","email":"a@b.c","role":"admin","is_active":true}`))
		})

		h := &MeHandler{AuthService: svc}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.AccessTokenCookie, Value: "at"})
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"username":"alice"`)
	})

	t.Run("missing cookie yields 401", func(t *testing.T) {
		t.Parallel()

		_, svc := newAuthService(t)
		h := &MeHandler{AuthService: svc}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), sessionsdk.ErrorCodeNotAuthenticated)
	})
}
