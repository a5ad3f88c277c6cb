package cookie

import (
	"net/http"
	"time"

	"github.com/scrapter/scrapter-front/internal/envutil"
	"github.com/scrapter/scrapter-front/internal/log"
)

// Common cookie names used in scrapter-front
const (
	// SessionCookie carries the opaque session token. Never readable by scripts.
	SessionCookie = "scrapter_session"
	// ProfileCookie carries the public profile snapshot for optimistic
	// rendering. Readable by scripts, must never contain secrets.
	ProfileCookie = "scrapter_profile"
	CSRFCookie    = "csrf_token"
)

// SessionTTL is the lifetime of both auth cookies
const SessionTTL = 30 * 24 * time.Hour

// SetSession sets the protected session cookie with appropriate security settings
func SetSession(w http.ResponseWriter, value string) {
	secure := !envutil.IsDev()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL.Seconds()),
	})

	log.LogTraceWithFields("cookie", "Session cookie set", map[string]any{
		"maxAge":   SessionTTL.String(),
		"secure":   secure,
		"sameSite": "Lax",
	})
}

// SetProfile sets the script-readable profile snapshot cookie
func SetProfile(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: false, // the profile snapshot is read by page scripts
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionTTL.Seconds()),
	})
}

// SetCSRF sets a CSRF token cookie
func SetCSRF(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: false, // CSRF tokens need to be readable by JavaScript
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
}

// Clear removes a cookie by setting MaxAge to -1
func Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// ClearAuth removes the session and profile cookies together. The pair is
// finalized within one response, so a client never observes a half-cleared
// state.
func ClearAuth(w http.ResponseWriter) {
	Clear(w, SessionCookie)
	Clear(w, ProfileCookie)
	log.LogTraceWithFields("cookie", "Auth cookies cleared", nil)
}

// Get retrieves a cookie value from the request
func Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// GetSession retrieves the session cookie value
func GetSession(r *http.Request) (string, error) {
	return Get(r, SessionCookie)
}

// GetProfile retrieves the profile cookie value
func GetProfile(r *http.Request) (string, error) {
	return Get(r, ProfileCookie)
}

// GetCSRF retrieves the CSRF cookie value
func GetCSRF(r *http.Request) (string, error) {
	return Get(r, CSRFCookie)
}
