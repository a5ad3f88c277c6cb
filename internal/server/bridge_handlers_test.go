package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scrapter/scrapter-front/internal/bridge"
	"github.com/scrapter/scrapter-front/internal/cookie"
	"github.com/scrapter/scrapter-front/internal/server"
	"github.com/scrapter/scrapter-front/internal/testutil"
)

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Status
}

func TestStatusWithoutSessionIsMissing(t *testing.T) {
	handlers := server.NewBridgeHandlers(bridge.New("scrapter-extension", nil))

	req := httptest.NewRequest("GET", "/api/extension/status", nil)
	rec := httptest.NewRecorder()
	handlers.StatusHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(bridge.StatusMissing), decodeStatus(t, rec))
}

func TestStatusWithoutExtensionIsMissing(t *testing.T) {
	handlers := server.NewBridgeHandlers(bridge.New("", nil))

	req := httptest.NewRequest("GET", "/api/extension/status", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()
	handlers.StatusHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(bridge.StatusMissing), decodeStatus(t, rec))
}

func TestRetryResolvesConnected(t *testing.T) {
	messenger := &testutil.MockMessenger{}
	messenger.On("IsAvailable").Return(true)
	messenger.On("Send", mock.Anything, "scrapter-extension", mock.Anything).
		Return(&bridge.AuthSyncAck{Success: true}, nil)

	b := bridge.New("scrapter-extension", messenger)
	handlers := server.NewBridgeHandlers(b)

	req := httptest.NewRequest("POST", "/api/extension/retry", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookie, Value: "token123"})
	rec := httptest.NewRecorder()
	handlers.RetryHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(bridge.StatusConnected), decodeStatus(t, rec))

	// The resolved status is observable on subsequent polls
	require.Eventually(t, func() bool {
		return b.Status() == bridge.StatusConnected
	}, time.Second, 10*time.Millisecond)
}

func TestRetryRejectsNonPost(t *testing.T) {
	handlers := server.NewBridgeHandlers(bridge.New("", nil))

	req := httptest.NewRequest("GET", "/api/extension/retry", nil)
	rec := httptest.NewRecorder()
	handlers.RetryHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
