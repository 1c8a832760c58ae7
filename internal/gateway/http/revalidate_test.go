package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRevalidateHandler(t *testing.T) {
	t.Parallel()

	t.Run("valid secret is accepted", func(t *testing.T) {
		t.Parallel()

		h := &RevalidateHandler{Secret: "hook-secret"}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/revalidate",
			strings.NewReader(`{"action":"article_published","slug":"hello-world","secret":"hook-secret"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad secret yields 403", func(t *testing.T) {
		t.Parallel()

		h := &RevalidateHandler{Secret: "hook-secret"}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/revalidate",
			strings.NewReader(`{"action":"article_published","secret":"guess"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("disabled without a configured secret", func(t *testing.T) {
		t.Parallel()

		h := &RevalidateHandler{}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/revalidate",
			strings.NewReader(`{"action":"article_published","secret":""}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing action yields 400", func(t *testing.T) {
		t.Parallel()

		h := &RevalidateHandler{Secret: "hook-secret"}
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/revalidate",
			strings.NewReader(`{"secret":"hook-secret"}`))
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
