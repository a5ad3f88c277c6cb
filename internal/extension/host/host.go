package host

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scrapter/scrapter-front/internal/bridge"
	"github.com/scrapter/scrapter-front/internal/extension/apiclient"
	"github.com/scrapter/scrapter-front/internal/extension/credstore"
	"github.com/scrapter/scrapter-front/internal/log"
)

// Host is the extension runtime's end of the AUTH_SYNC handshake. It accepts
// one message per connection, updates the credential store, and replies with
// a single acknowledgement. It never calls back into the dashboard: the
// token flows one way, server to extension.
type Host struct {
	extensionID string
	creds       credstore.Store
	api         *apiclient.Client // optional, for the profile refresh
	upgrader    websocket.Upgrader
}

// New creates a handshake host for the given extension identifier
func New(extensionID string, creds credstore.Store, api *apiclient.Client) *Host {
	return &Host{
		extensionID: extensionID,
		creds:       creds,
		api:         api,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// ServeHTTP upgrades the connection and runs one handshake exchange
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.LogDebugWithFields("host", "Websocket upgrade failed", map[string]any{
			"error": err.Error(),
		})
		return
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var req bridge.AuthSyncRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.LogDebugWithFields("host", "Malformed handshake message", map[string]any{
			"error": err.Error(),
		})
		return
	}

	success := h.handle(r.Context(), r.URL.Query().Get("extension"), req)

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(bridge.AuthSyncAck{Success: success}); err != nil {
		log.LogDebugWithFields("host", "Failed to write acknowledgement", map[string]any{
			"error": err.Error(),
		})
	}
}

// handle applies one AUTH_SYNC message to the credential store. Messages
// addressed to another extension, unknown message types, and empty tokens
// are all acknowledged with success=false.
func (h *Host) handle(ctx context.Context, addressedTo string, req bridge.AuthSyncRequest) bool {
	if addressedTo != h.extensionID {
		log.LogDebugWithFields("host", "Handshake addressed to unknown extension", map[string]any{
			"addressed": addressedTo,
		})
		return false
	}
	if req.Type != bridge.MessageTypeAuthSync || req.Token == "" {
		return false
	}

	state := credstore.AuthState{
		SessionToken: req.Token,
		LastSyncedAt: time.Now(),
	}

	// Resending the same token keeps the existing profile snapshot
	if existing, err := h.creds.Read(ctx); err == nil && existing != nil && existing.SessionToken == req.Token {
		state.Profile = existing.Profile
	}

	if state.Profile == nil && h.api != nil {
		// Best effort: the snapshot only serves rendering, a failed fetch
		// must not fail the sync
		if err := h.creds.Write(ctx, state); err != nil {
			log.LogErrorWithFields("host", "Credential store write failed", map[string]any{
				"error": err.Error(),
			})
			return false
		}
		if profile, err := h.api.Me(ctx); err == nil {
			state.Profile = profile
		}
	}

	if err := h.creds.Write(ctx, state); err != nil {
		log.LogErrorWithFields("host", "Credential store write failed", map[string]any{
			"error": err.Error(),
		})
		return false
	}

	log.LogInfoWithFields("host", "Auth state synchronized", map[string]any{
		"hasProfile": state.Profile != nil,
	})
	return true
}
