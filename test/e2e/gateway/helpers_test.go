package gateway_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiongate/internal/credstub"
	httpapi "github.com/aussiebroadwan/sessiongate/internal/gateway/http"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/service"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/store/memory"
	"github.com/aussiebroadwan/sessiongate/internal/gateway/upstream"
	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

/*
 * End-to-end tests for the session gateway. The full stack runs in-process:
 * a real credential store (credstub) behind a real gateway router, driven
 * through the client SDK the way a browser frontend would drive it.
 */

const revalidationSecret = "e2e-shared-secret"

type stack struct {
	credstub *httptest.Server
	gateway  *httptest.Server
	sdk      *sessionsdk.SDKClient
}

// newStack boots a credstub and a gateway wired to it, both on loopback.
func newStack(t *testing.T) *stack {
	t.Helper()

	creds, err := credstub.NewServer(credstub.Config{
		JWTSecret:    "e2e-jwt-secret",
		DatabaseFile: filepath.Join(t.TempDir(), "credstub.db"),
		OIDCEnabled:  true,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = creds.Close() })

	credsSrv := httptest.NewServer(creds)
	t.Cleanup(credsSrv.Close)
	creds.SetBaseURL(credsSrv.URL)

	up := upstream.New(credsSrv.URL, 5*time.Second)
	nonces := memory.NewStore()

	router := httpapi.NewRouter(
		&httpapi.CookieJar{
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 168 * time.Hour,
			Secure:     false,
			SameSite:   http.SameSiteLaxMode,
		},
		httpapi.NewMetrics(prometheus.NewRegistry()),
		nonces,
		revalidationSecret,
		"e2e",
		slog.New(slog.DiscardHandler),
	)
	router.AuthService = &service.AuthService{Upstream: up}
	router.FederatedService = &service.FederatedService{
		Upstream: up,
		Nonces:   nonces,
		NonceTTL: 10 * time.Minute,
	}
	router.ApplyRoutes()

	gatewaySrv := httptest.NewServer(router)
	t.Cleanup(gatewaySrv.Close)

	sdk, err := sessionsdk.NewSDKClient(gatewaySrv.URL)
	require.NoError(t, err)

	return &stack{credstub: credsSrv, gateway: gatewaySrv, sdk: sdk}
}

// corruptAccessCookie replaces the access token cookie with garbage while
// leaving the refresh cookie intact, simulating access token expiry.
func (s *stack) corruptAccessCookie(t *testing.T) {
	t.Helper()

	u, err := url.Parse(s.gateway.URL)
	require.NoError(t, err)

	s.sdk.HTTPClient.Jar.SetCookies(u, []*http.Cookie{{
		Name:  sessionsdk.AccessTokenCookie,
		Value: "expired-garbage",
		Path:  "/",
	}})
}
