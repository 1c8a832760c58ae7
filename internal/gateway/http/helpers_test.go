package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/store/memory"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
)

// newCredentialStore runs a minimal credential store double and returns an
// upstream client pointed at it.
func newCredentialStore(t *testing.T) (*http.ServeMux, *upstream.Client) {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return mux, upstream.New(srv.URL, 5*time.Second)
}

func newAuthService(t *testing.T) (*http.ServeMux, *service.AuthService) {
	t.Helper()
	mux, client := newCredentialStore(t)
	return mux, &service.AuthService{Upstream: client}
}

// deadAuthService points at a port nothing listens on.
func deadAuthService() *service.AuthService {
	return &service.AuthService{Upstream: upstream.New("http://127.0.0.1:1", 500*time.Millisecond)}
}

func newFederatedService(t *testing.T) (*http.ServeMux, *service.FederatedService) {
	t.Helper()
	mux, client := newCredentialStore(t)
	return mux, &service.FederatedService{
		Upstream: client,
		Nonces:   memory.NewStore(),
		NonceTTL: 10 * time.Minute,
	}
}
