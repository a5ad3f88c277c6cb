package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/scrapter/scrapter-front/internal/backend"
	"github.com/scrapter/scrapter-front/internal/bridge"
	"github.com/scrapter/scrapter-front/internal/cookie"
	"github.com/scrapter/scrapter-front/internal/crypto"
	"github.com/scrapter/scrapter-front/internal/guard"
	jsonwriter "github.com/scrapter/scrapter-front/internal/json"
	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/session"
	"github.com/scrapter/scrapter-front/internal/storage"
)

// ErrRedirectPending signals that a navigation is already in progress for
// this request. Issuance flows propagate it untouched; it is never logged or
// surfaced as a failure.
var ErrRedirectPending = errors.New("redirect pending")

// CheckEmailPath is where signup lands while email verification is pending
const CheckEmailPath = "/check-email"

// AuthHandlers is the session issuer: it owns login, signup and signout, and
// the dual-cookie side effects that go with them.
type AuthHandlers struct {
	authenticator backend.Authenticator
	store         storage.Store
	layouts       *LayoutCache
	bridge        *bridge.Bridge
	csrf          *crypto.CSRFProtection // nil when CSRF is not configured
}

// NewAuthHandlers creates the session issuer handlers with dependency injection
func NewAuthHandlers(
	authenticator backend.Authenticator,
	store storage.Store,
	layouts *LayoutCache,
	b *bridge.Bridge,
	csrf *crypto.CSRFProtection,
) *AuthHandlers {
	return &AuthHandlers{
		authenticator: authenticator,
		store:         store,
		layouts:       layouts,
		bridge:        b,
		csrf:          csrf,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// parseCredentials accepts both JSON bodies and form posts
func parseCredentials(r *http.Request) (credentialsRequest, error) {
	var req credentialsRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	req.Name = r.PostFormValue("name")
	return req, nil
}

// LoginHandler validates credentials through the backend collaborator and
// establishes the session: the protected session cookie plus the
// script-readable profile snapshot, set together in one response.
func (h *AuthHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonwriter.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	ctx := r.Context()

	req, err := parseCredentials(r)
	if err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request")
		return
	}
	if !h.checkCSRF(r) {
		jsonwriter.WriteForbidden(w, "Invalid CSRF token")
		return
	}

	result, err := h.authenticator.Login(ctx, req.Email, req.Password)
	if err != nil {
		// One generic message for any credential failure: the response must
		// not reveal whether the email or the password was wrong
		if errors.Is(err, backend.ErrInvalidCredentials) {
			jsonwriter.WriteUnauthorized(w, "Login failed")
			return
		}
		log.LogWarnWithFields("auth", "Login backend unreachable", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteServiceUnavailable(w, "Connection failed")
		return
	}

	profile := session.Profile{Email: result.User.Email, DisplayName: result.User.Name}
	encodedProfile, err := profile.Encode()
	if err != nil {
		jsonwriter.WriteInternalServerError(w, "Internal server error")
		return
	}

	cookie.SetSession(w, result.SessionToken)
	cookie.SetProfile(w, encodedProfile)

	sess := session.New(result.SessionToken, result.User.Email)
	if err := h.store.UpsertUser(ctx, result.User.Email); err != nil {
		log.LogWarnWithFields("auth", "Failed to upsert user", map[string]any{
			"email": result.User.Email,
			"error": err.Error(),
		})
	}
	if err := h.store.TrackSession(ctx, storage.TrackedSession{
		TokenDigest: storage.DigestToken(sess.Token),
		Email:       sess.Owner,
		IssuedAt:    sess.IssuedAt,
		ExpiresAt:   sess.Expiry,
	}); err != nil {
		log.LogWarnWithFields("auth", "Failed to track session", map[string]any{
			"email": sess.Owner,
			"error": err.Error(),
		})
	}

	// Every cached layout re-reads the new identity
	h.layouts.Invalidate()

	// Push the fresh token to the extension; the handshake is asynchronous
	// and its failure is a soft state, never fatal to the web session
	h.bridge.SetToken(sess.Token)

	log.LogInfoWithFields("auth", "Session established", map[string]any{
		"email": sess.Owner,
	})
	http.Redirect(w, r, guard.ProtectedPrefix, http.StatusSeeOther)
}

// SignupHandler forwards account creation. No session is established; the
// user lands on a check-your-email page until verification completes.
func (h *AuthHandlers) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonwriter.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	req, err := parseCredentials(r)
	if err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid request")
		return
	}
	if !h.checkCSRF(r) {
		jsonwriter.WriteForbidden(w, "Invalid CSRF token")
		return
	}

	_, err = h.authenticator.Signup(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case err == nil:
		http.Redirect(w, r, CheckEmailPath, http.StatusSeeOther)
	case errors.Is(err, ErrRedirectPending):
		// Navigation already underway; not a failure
	case errors.Is(err, backend.ErrInvalidCredentials):
		jsonwriter.WriteBadRequest(w, "Signup failed")
	default:
		jsonwriter.WriteServiceUnavailable(w, "Connection failed")
	}
}

// SignoutHandler tears the session down: both cookies removed in one
// response, the tracked session revoked, cached layouts invalidated. It is
// idempotent; calling it with no active session is a safe no-op.
func (h *AuthHandlers) SignoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonwriter.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	token, _ := cookie.GetSession(r)

	cookie.ClearAuth(w)

	if token != "" {
		if err := h.store.RevokeSession(r.Context(), storage.DigestToken(token)); err != nil {
			log.LogWarnWithFields("auth", "Failed to revoke session", map[string]any{
				"error": err.Error(),
			})
		}
	}

	h.layouts.Invalidate()
	h.bridge.SetToken("")

	http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
}

// CSRFHandler issues a stateless CSRF token and its cookie
func (h *AuthHandlers) CSRFHandler(w http.ResponseWriter, r *http.Request) {
	if h.csrf == nil {
		jsonwriter.WriteNotFound(w, "CSRF protection not configured")
		return
	}

	token, err := h.csrf.Generate()
	if err != nil {
		jsonwriter.WriteInternalServerError(w, "Failed to generate CSRF token")
		return
	}

	cookie.SetCSRF(w, token)
	_ = jsonwriter.Write(w, map[string]string{"csrfToken": token})
}

// ProfileHandler is the profile-fetch collaborator: it resolves the request
// session against the backend. An unauthorized answer is self-healing: the
// cookie pair is purged and the client redirected to login, never handed a
// raw error.
func (h *AuthHandlers) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r)
	if sess == nil {
		jsonwriter.WriteUnauthorized(w, "Not signed in")
		return
	}

	profile, err := h.authenticator.Me(r.Context(), sess.Token)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			log.LogDebugWithFields("auth", "Session rejected by backend, purging cookies", nil)
			cookie.ClearAuth(w)
			http.Redirect(w, r, guard.LoginPath, http.StatusFound)
			return
		}
		jsonwriter.WriteServiceUnavailable(w, "Connection failed")
		return
	}

	// Refresh the tracked session's activity timestamp
	if err := h.store.TrackSession(r.Context(), storage.TrackedSession{
		TokenDigest: storage.DigestToken(sess.Token),
		Email:       profile.Email,
	}); err != nil {
		log.LogWarnWithFields("auth", "Failed to refresh session activity", map[string]any{
			"error": err.Error(),
		})
	}

	_ = jsonwriter.Write(w, profile)
}

// checkCSRF validates the request's CSRF token when protection is configured
func (h *AuthHandlers) checkCSRF(r *http.Request) bool {
	if h.csrf == nil {
		return true
	}

	token := r.Header.Get("X-CSRF-Token")
	if token == "" {
		token = r.PostFormValue("csrf_token")
	}
	return token != "" && h.csrf.Validate(token)
}
