package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/pkg/sessionsdk"
)

// CookieJar writes and clears the gateway's session cookies. Both cookies
// are HttpOnly with Path=/ and SameSite=Lax; application code never reads
// token values, only this jar does.
type CookieJar struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
	SameSite   http.SameSite
}

func (j *CookieJar) sameSite() http.SameSite {
	if j.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return j.SameSite
}

// SetTokens sets both session cookies on a successful login.
func (j *CookieJar) SetTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	j.SetAccessToken(w, accessToken)
	j.SetRefreshToken(w, refreshToken)
}

// SetAccessToken sets only the access token cookie, used when a refresh did
// not rotate the refresh token.
func (j *CookieJar) SetAccessToken(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionsdk.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(j.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: j.sameSite(),
	})
}

// SetRefreshToken sets the refresh token cookie.
func (j *CookieJar) SetRefreshToken(w http.ResponseWriter, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionsdk.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(j.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: j.sameSite(),
	})
}

// Clear expires both session cookies. Safe to call when no cookies exist.
func (j *CookieJar) Clear(w http.ResponseWriter) {
	for _, name := range []string{sessionsdk.AccessTokenCookie, sessionsdk.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   j.Secure,
			SameSite: j.sameSite(),
		})
	}
}

// ReadAccessToken returns the access token cookie value, or "".
func ReadAccessToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionsdk.AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ReadRefreshToken returns the refresh token cookie value, or "".
func ReadRefreshToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionsdk.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
