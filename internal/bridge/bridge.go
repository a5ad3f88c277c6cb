package bridge

import (
	"context"
	"sync"
	"time"

	"github.com/scrapter/scrapter-front/internal/log"
	"golang.org/x/sync/singleflight"
)

// SyncStatus is the transient outcome of the extension handshake for one
// session-token identity. It is never persisted.
type SyncStatus string

const (
	StatusChecking  SyncStatus = "checking"
	StatusConnected SyncStatus = "connected"
	StatusMissing   SyncStatus = "missing"
)

// MessageTypeAuthSync identifies the one-shot handshake message
const MessageTypeAuthSync = "AUTH_SYNC"

// AuthSyncRequest is the structured message pushed to the extension
type AuthSyncRequest struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// AuthSyncAck is the single acknowledgement the extension replies with.
// Absence of an ack within the channel's lifetime is equivalent to failure.
type AuthSyncAck struct {
	Success bool `json:"success"`
}

// Messenger is the extension-messaging capability. Environments without an
// installed extension inject an unavailable or failing implementation; the
// bridge maps every such condition to StatusMissing.
type Messenger interface {
	IsAvailable() bool
	Send(ctx context.Context, extensionID string, req AuthSyncRequest) (*AuthSyncAck, error)
}

// probeTimeout bounds one handshake attempt
const probeTimeout = 5 * time.Second

// Bridge pushes the current session token into the extension runtime and
// tracks the handshake status for UI feedback. Propagation is strictly
// one-way and idempotent: resending the same token is a no-op for the
// extension's state.
type Bridge struct {
	extensionID string
	messenger   Messenger
	group       singleflight.Group // collapses concurrent probes per token

	mu     sync.Mutex
	token  string
	status SyncStatus
}

// New creates a bridge for the configured extension identifier
func New(extensionID string, messenger Messenger) *Bridge {
	return &Bridge{
		extensionID: extensionID,
		messenger:   messenger,
		status:      StatusMissing,
	}
}

// Probe runs one request/response handshake and reports the outcome. It is
// a one-shot attempt: no retry, no backoff, no persistent connection.
// Failure is soft; this method never returns an error and never panics.
func (b *Bridge) Probe(ctx context.Context, token string) SyncStatus {
	if b.extensionID == "" || token == "" {
		return StatusMissing
	}
	if b.messenger == nil || !b.messenger.IsAvailable() {
		return StatusMissing
	}

	result, _, _ := b.group.Do(token, func() (any, error) {
		// Concurrent probes for the same token share one handshake, so
		// the shared attempt must not die with the first caller's context
		return b.probeOnce(context.WithoutCancel(ctx), token), nil
	})
	return result.(SyncStatus)
}

func (b *Bridge) probeOnce(ctx context.Context, token string) (status SyncStatus) {
	// The handshake path must never propagate a failure to its caller
	defer func() {
		if r := recover(); r != nil {
			log.LogErrorWithFields("bridge", "Recovered from messenger panic", map[string]any{
				"panic": r,
			})
			status = StatusMissing
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ack, err := b.messenger.Send(ctx, b.extensionID, AuthSyncRequest{
		Type:  MessageTypeAuthSync,
		Token: token,
	})
	if err != nil {
		log.LogDebugWithFields("bridge", "Handshake delivery failed", map[string]any{
			"extension": b.extensionID,
			"error":     err.Error(),
		})
		return StatusMissing
	}
	if ack == nil || !ack.Success {
		return StatusMissing
	}
	return StatusConnected
}

// SetToken reacts to a change of session-token identity, including absent to
// present. The probe runs asynchronously; Status reports checking until it
// resolves. A probe whose token identity was superseded while in flight is
// dropped rather than overwriting the newer result.
func (b *Bridge) SetToken(token string) {
	b.mu.Lock()
	if token == b.token && b.status != StatusChecking {
		b.mu.Unlock()
		return
	}
	b.token = token
	if token == "" {
		b.status = StatusMissing
		b.mu.Unlock()
		return
	}
	b.status = StatusChecking
	b.mu.Unlock()

	go b.resolve(token)
}

// Retry re-runs the handshake for the current token on demand and returns
// the freshly resolved status. Safe to call at any time.
func (b *Bridge) Retry(ctx context.Context) SyncStatus {
	b.mu.Lock()
	token := b.token
	b.mu.Unlock()

	status := b.Probe(ctx, token)
	b.store(token, status)
	return status
}

// Status reports the latest resolved handshake outcome. Callers should treat
// it as a best-effort signal, not a strict ordering guarantee.
func (b *Bridge) Status() SyncStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Bridge) resolve(token string) {
	status := b.Probe(context.Background(), token)
	b.store(token, status)
}

// store records a probe outcome unless the token identity moved on
func (b *Bridge) store(token string, status SyncStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != token {
		return
	}
	b.status = status
}
