package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

func TestRefreshHandler(t *testing.T) {
	t.Parallel()

	t.Run("cookie token mints a new access cookie", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"at2"}`))
		})

		h := &RefreshHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.RefreshTokenCookie, Value: "rt"})
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "at2", cookieByName(t, cookies, sessionsdk.AccessTokenCookie).Value)
	})

	t.Run("rotated refresh token is set too", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"access_token":"at2","refresh_token":"rt2"}`))
		})

		h := &RefreshHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.RefreshTokenCookie, Value: "rt"})
		h.ServeHTTP(rec, req)

		cookies := rec.Result().Cookies()
		require.Equal(t, "at2", cookieByName(t, cookies, sessionsdk.AccessTokenCookie).Value)
		require.Equal(t, "rt2", cookieByName(t, cookies, sessionsdk.RefreshTokenCookie).Value)
	})

	t.Run("body token is accepted when no cookie is present", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			body := make([]byte, 256)
			n, _ := r.Body.Read(body)
			require.Contains(t, string(body[:n]), `"refresh_token":"rt-body"`)
			_, _ = w.Write([]byte(`{"access_token":"at2"}`))
		})

		h := &RefreshHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh",
			strings.NewReader(`{"refresh_token":"rt-body"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("dead refresh token clears both cookies", func(t *testing.T) {
		t.Parallel()

		mux, svc := newAuthService(t)
		mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Invalid refresh token"}`))
		})

		h := &RefreshHandler{AuthService: svc, Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.RefreshTokenCookie, Value: "revoked"})
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), sessionsdk.ErrorCodeRefreshFailed)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 2)
		for _, c := range cookies {
			require.Equal(t, -1, c.MaxAge)
		}
	})

	t.Run("missing token yields 401 and clears cookies", func(t *testing.T) {
		t.Parallel()

		_, svc := newAuthService(t)
		h := &RefreshHandler{AuthService: svc, Cookies: testJar()}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), sessionsdk.ErrorCodeRefreshFailed)
	})

	t.Run("unreachable upstream keeps cookies", func(t *testing.T) {
		t.Parallel()

		h := &RefreshHandler{AuthService: deadAuthService(), Cookies: testJar()}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: sessionsdk.RefreshTokenCookie, Value: "rt"})
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadGateway, rec.Code)
		require.Empty(t, rec.Result().Cookies())
	})
}
