package guard

import (
	"net/http"
	"path"
	"strings"

	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/session"
)

// Route classes recognized by the guard
const (
	LoginPath       = "/login"
	SignupPath      = "/signup"
	LandingPath     = "/"
	ProtectedPrefix = "/dashboard"
)

// internalPrefixes are asset and API paths the guard never touches
var internalPrefixes = []string{
	"/_assets/",
	"/static/",
	"/api/",
	"/auth/",
	"/v1/",
	"/extension/",
	"/health",
	"/metrics",
}

// Decision is the outcome of one guard evaluation. An empty RedirectTo means
// the request passes through untouched.
type Decision struct {
	RedirectTo string
}

// Pass reports whether the request should be passed through
func (d Decision) Pass() bool {
	return d.RedirectTo == ""
}

// Decide is the access-control state machine, evaluated once per inbound
// request with no backend call and no memory between requests. Correctness
// depends only on session cookie presence; cryptographic and expiry
// validation is delegated to the profile-fetch collaborator, which purges
// the cookie pair itself on a 401.
func Decide(requestPath string, authenticated bool) Decision {
	if isInternal(requestPath) {
		return Decision{}
	}

	if isProtected(requestPath) {
		if !authenticated {
			return Decision{RedirectTo: LoginPath}
		}
		return Decision{}
	}

	if isAuthOnly(requestPath) {
		if authenticated {
			return Decision{RedirectTo: ProtectedPrefix}
		}
		return Decision{}
	}

	return Decision{}
}

// isInternal matches asset/API paths by prefix, plus anything carrying a
// file extension (images, scripts, fonts)
func isInternal(requestPath string) bool {
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(requestPath, prefix) {
			return true
		}
	}
	return path.Ext(requestPath) != ""
}

// isProtected matches the dashboard root and its subtree as path segments;
// lookalike paths such as /dashboardfoo stay public
func isProtected(requestPath string) bool {
	return requestPath == ProtectedPrefix || strings.HasPrefix(requestPath, ProtectedPrefix+"/")
}

// isAuthOnly matches pages that only make sense without an active session
func isAuthOnly(requestPath string) bool {
	return requestPath == LoginPath || requestPath == SignupPath || requestPath == LandingPath
}

// NewMiddleware wraps a handler with the route guard. The guard is stateless
// and shared-nothing: concurrent requests never interfere.
func NewMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromRequest(r)
			decision := Decide(r.URL.Path, sess != nil)
			if decision.Pass() {
				next.ServeHTTP(w, r)
				return
			}

			log.LogDebugWithFields("guard", "Redirecting request", map[string]any{
				"path":          r.URL.Path,
				"authenticated": sess != nil,
				"target":        decision.RedirectTo,
			})
			http.Redirect(w, r, decision.RedirectTo, http.StatusFound)
		})
	}
}
