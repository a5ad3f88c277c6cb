package server

import (
	"net/http"

	"github.com/scrapter/scrapter-front/internal/bridge"
	jsonwriter "github.com/scrapter/scrapter-front/internal/json"
	"github.com/scrapter/scrapter-front/internal/session"
)

// BridgeHandlers expose the extension handshake status to the dashboard UI
type BridgeHandlers struct {
	bridge *bridge.Bridge
}

// NewBridgeHandlers creates handlers over the given bridge
func NewBridgeHandlers(b *bridge.Bridge) *BridgeHandlers {
	return &BridgeHandlers{bridge: b}
}

type syncStatusResponse struct {
	Status bridge.SyncStatus `json:"status"`
}

// StatusHandler reports the latest handshake outcome for the request's
// session token. Seeing a token the bridge hasn't probed yet (a fresh page
// load after login, or a cookie that outlived a restart) triggers a probe.
func (h *BridgeHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	sess := session.FromRequest(r)
	if sess == nil {
		_ = jsonwriter.Write(w, syncStatusResponse{Status: bridge.StatusMissing})
		return
	}

	h.bridge.SetToken(sess.Token)
	_ = jsonwriter.Write(w, syncStatusResponse{Status: h.bridge.Status()})
}

// RetryHandler re-runs the handshake on demand. It is idempotent and safe
// to trigger repeatedly from the UI's retry affordance.
func (h *BridgeHandlers) RetryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonwriter.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	sess := session.FromRequest(r)
	if sess == nil {
		_ = jsonwriter.Write(w, syncStatusResponse{Status: bridge.StatusMissing})
		return
	}

	h.bridge.SetToken(sess.Token)
	status := h.bridge.Retry(r.Context())
	_ = jsonwriter.Write(w, syncStatusResponse{Status: status})
}
