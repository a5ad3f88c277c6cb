package bridge

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scrapter/scrapter-front/internal/log"
)

// WebsocketMessenger delivers handshake messages to the extension runtime
// over its local websocket endpoint. One dial per send: the handshake is a
// one-shot exchange, not a subscription.
type WebsocketMessenger struct {
	endpoint string // ws:// or wss:// URL of the extension's sync endpoint
	dialer   *websocket.Dialer
}

var _ Messenger = (*WebsocketMessenger)(nil)

// NewWebsocketMessenger creates a messenger for the given endpoint. An empty
// endpoint yields an unavailable messenger, which the bridge resolves to
// StatusMissing without attempting delivery.
func NewWebsocketMessenger(endpoint string) *WebsocketMessenger {
	return &WebsocketMessenger{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// IsAvailable reports whether the messaging capability is configured
func (m *WebsocketMessenger) IsAvailable() bool {
	return m.endpoint != ""
}

// Send delivers one message addressed to the extension identifier and waits
// for exactly one acknowledgement
func (m *WebsocketMessenger) Send(ctx context.Context, extensionID string, req AuthSyncRequest) (*AuthSyncAck, error) {
	target, err := url.Parse(m.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid extension endpoint: %w", err)
	}
	query := target.Query()
	query.Set("extension", extensionID)
	target.RawQuery = query.Encode()

	conn, _, err := m.dialer.DialContext(ctx, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing extension: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("sending handshake: %w", err)
	}

	var ack AuthSyncAck
	if err := conn.ReadJSON(&ack); err != nil {
		return nil, fmt.Errorf("awaiting acknowledgement: %w", err)
	}

	log.LogTraceWithFields("bridge", "Handshake acknowledged", map[string]any{
		"extension": extensionID,
		"success":   ack.Success,
	})
	return &ack, nil
}
