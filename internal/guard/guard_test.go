package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapter/scrapter-front/internal/cookie"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		redirectTo    string
	}{
		{
			name:          "protected path without session redirects to login",
			path:          "/dashboard",
			authenticated: false,
			redirectTo:    LoginPath,
		},
		{
			name:          "protected subpath without session redirects to login",
			path:          "/dashboard/jobs/42",
			authenticated: false,
			redirectTo:    LoginPath,
		},
		{
			name:          "protected path with session passes",
			path:          "/dashboard",
			authenticated: true,
		},
		{
			name:          "lookalike path is not protected",
			path:          "/dashboardfoo",
			authenticated: false,
		},
		{
			name:          "plural lookalike path is not protected",
			path:          "/dashboards",
			authenticated: false,
		},
		{
			name:          "login page with session redirects to dashboard",
			path:          "/login",
			authenticated: true,
			redirectTo:    ProtectedPrefix,
		},
		{
			name:          "signup page with session redirects to dashboard",
			path:          "/signup",
			authenticated: true,
			redirectTo:    ProtectedPrefix,
		},
		{
			name:          "landing page with session redirects to dashboard",
			path:          "/",
			authenticated: true,
			redirectTo:    ProtectedPrefix,
		},
		{
			name:          "login page without session passes",
			path:          "/login",
			authenticated: false,
		},
		{
			name:          "landing page without session passes",
			path:          "/",
			authenticated: false,
		},
		{
			name:          "api path passes untouched without session",
			path:          "/api/profile",
			authenticated: false,
		},
		{
			name:          "auth path passes untouched with session",
			path:          "/auth/login",
			authenticated: true,
		},
		{
			name:          "asset path passes untouched",
			path:          "/_assets/app.js",
			authenticated: false,
		},
		{
			name:          "file extension passes untouched",
			path:          "/favicon.ico",
			authenticated: true,
		},
		{
			name:          "health check passes untouched",
			path:          "/health",
			authenticated: false,
		},
		{
			name:          "unknown public page passes either way",
			path:          "/pricing",
			authenticated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.path, tt.authenticated)
			if tt.redirectTo == "" {
				assert.True(t, decision.Pass())
			} else {
				assert.Equal(t, tt.redirectTo, decision.RedirectTo)
			}
		})
	}
}

func TestMiddlewareRedirectsWithoutCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware()(next)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestMiddlewarePassesWithCookie(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware()(next)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestMiddlewareRedirectsAuthOnlyPageWithCookie(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware()(next)

	req := httptest.NewRequest("GET", "/login", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, ProtectedPrefix, rec.Header().Get("Location"))
}
