package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrapter/scrapter-front/internal/extension/apiclient"
	"github.com/scrapter/scrapter-front/internal/extension/credstore"
)

func TestDoAttachesBearerOnlyWhenTokenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	client := apiclient.New(srv.URL, creds)

	require.NoError(t, client.Do(context.Background(), "GET", "/v1/jobs", nil, nil))
	assert.Empty(t, gotAuth)

	require.NoError(t, creds.Write(context.Background(), credstore.AuthState{SessionToken: "token123"}))
	require.NoError(t, client.Do(context.Background(), "GET", "/v1/jobs", nil, nil))
	assert.Equal(t, "Bearer token123", gotAuth)
}

func TestDoReadsTokenFreshPerCall(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	require.NoError(t, creds.Write(context.Background(), credstore.AuthState{SessionToken: "first"}))

	client := apiclient.New(srv.URL, creds)
	require.NoError(t, client.Do(context.Background(), "GET", "/v1/jobs", nil, nil))
	assert.Equal(t, "Bearer first", gotAuth)

	require.NoError(t, creds.Write(context.Background(), credstore.AuthState{SessionToken: "second"}))
	require.NoError(t, client.Do(context.Background(), "GET", "/v1/jobs", nil, nil))
	assert.Equal(t, "Bearer second", gotAuth)
}

func TestDoSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","message":"Session expired"}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, credstore.NewMemoryStore())
	err := client.Do(context.Background(), "GET", "/v1/me", nil, nil)

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Session expired", apiErr.Message)
}

func TestDoUnparseableErrorBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, credstore.NewMemoryStore())
	err := client.Do(context.Background(), "GET", "/v1/me", nil, nil)

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "Unknown error", apiErr.Message)
}

func TestDoTransportFailureIsTyped(t *testing.T) {
	client := apiclient.New("http://127.0.0.1:1", credstore.NewMemoryStore())
	err := client.Do(context.Background(), "GET", "/v1/me", nil, nil)

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Connection failed", apiErr.Message)
}

func TestMeDecodesProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/me", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"jo@example.com","displayName":"Jo"}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemoryStore()
	require.NoError(t, creds.Write(context.Background(), credstore.AuthState{SessionToken: "token123"}))

	client := apiclient.New(srv.URL, creds)
	profile, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", profile.Email)
	assert.Equal(t, "Jo", profile.DisplayName)
}
