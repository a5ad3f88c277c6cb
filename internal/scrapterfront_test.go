package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/scrapter/scrapter-front/internal/config"
	"github.com/scrapter/scrapter-front/internal/cookie"
	"github.com/scrapter/scrapter-front/internal/storage"
)

// buildTestHandler wires the full middleware and routing stack over the local
// dev authenticator, the way the binary does at startup
func buildTestHandler(t *testing.T) http.Handler {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Config{
		Version: "v1",
		Dashboard: config.DashboardConfig{
			BaseURL: "http://localhost:8080",
			Addr:    ":8080",
			Storage: config.StorageKindMemory,
			DevUsers: []config.DevUser{
				{Email: "jo@example.com", Name: "Jo", PasswordHash: string(hash)},
			},
		},
	}

	return buildHTTPHandler(cfg, storage.NewMemoryStore(), setupAuthenticator(cfg), setupBridge(cfg))
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookie.SessionCookie {
			return c
		}
	}
	return nil
}

func TestFullStackAuthFlow(t *testing.T) {
	handler := buildTestHandler(t)

	t.Run("dashboard without session redirects to login", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard", nil))

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("login page without session renders", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/login", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "login")
	})

	var sessionCookie *http.Cookie

	t.Run("login with valid credentials establishes session", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/login",
			strings.NewReader("email=jo%40example.com&password=hunter2"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

		sessionCookie = sessionCookieFrom(t, rec)
		require.NotNil(t, sessionCookie)
	})

	t.Run("login with wrong password fails generically", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/login",
			strings.NewReader("email=jo%40example.com&password=wrong"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Login failed")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("dashboard with session renders", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/dashboard", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("login page with session redirects to dashboard", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/login", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("profile resolves against the authenticator", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/profile", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "jo@example.com")
	})

	t.Run("extension status without extension config is missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/extension/status", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "missing")
	})

	t.Run("signout clears the session", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/auth/signout", nil)
		req.AddCookie(sessionCookie)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		cleared := sessionCookieFrom(t, rec)
		require.NotNil(t, cleared)
		assert.Less(t, cleared.MaxAge, 0)
	})

	t.Run("health and metrics stay public", func(t *testing.T) {
		for _, path := range []string{"/health", "/metrics"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
			assert.Equal(t, http.StatusOK, rec.Code, path)
		}
	})
}
