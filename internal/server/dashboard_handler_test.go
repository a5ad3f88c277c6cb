package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapter/scrapter-front/internal/cookie"
	"github.com/scrapter/scrapter-front/internal/server"
	"github.com/scrapter/scrapter-front/internal/session"
)

func dashboardRequest(owner string) *http.Request {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookie, Value: "token123"})
	if owner != "" {
		encoded, _ := session.Profile{Email: owner}.Encode()
		req.AddCookie(&http.Cookie{Name: cookie.ProfileCookie, Value: encoded})
	}
	return req
}

func TestDashboardRendersAndCachesShell(t *testing.T) {
	layouts := server.NewLayoutCache()
	handler := server.NewDashboardHandler(layouts)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, dashboardRequest("jo@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jo@example.com")

	cached, ok := layouts.Get("jo@example.com")
	require.True(t, ok)
	assert.Equal(t, rec.Body.String(), string(cached))
}

func TestDashboardWithoutSessionRedirects(t *testing.T) {
	handler := server.NewDashboardHandler(server.NewLayoutCache())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/dashboard", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLayoutCacheInvalidate(t *testing.T) {
	layouts := server.NewLayoutCache()
	layouts.Put("jo@example.com", []byte("cached shell"))

	_, ok := layouts.Get("jo@example.com")
	require.True(t, ok)

	layouts.Invalidate()
	_, ok = layouts.Get("jo@example.com")
	assert.False(t, ok)
}
