package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
)

const (
	cookieSession       = "session_id"
	cookieOAuthState    = "oauth_state"
	cookieOAuthNonce    = "oauth_nonce"
	cookieLoginRedirect = "post_login_redirect"
	oauthCookieMaxAge   = 600
)

// cookieJar writes cookies with consistent attributes.
type cookieJar struct {
	domain string
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (c cookieJar) set(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// clear mirrors the attributes used when setting so browsers delete the cookie.
func (c cookieJar) clear(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		HttpOnly: true,
		Secure:   isSecure(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieJar) setSession(w http.ResponseWriter, r *http.Request, s *domainauth.Session) {
	c.set(w, r, cookieSession, s.ID, int(time.Until(s.ExpiresAt).Seconds()))
}

func sessionIDFromRequest(r *http.Request) string {
	ck, err := r.Cookie(cookieSession)
	if err != nil {
		return ""
	}
	return ck.Value
}
