package credstore

import (
	"context"
	"sync"
	"time"

	"github.com/scrapter/scrapter-front/internal/session"
)

// RecordKey is the single fixed key the auth state lives under
const RecordKey = "auth_state"

// AuthState is the extension's synchronized view of "who is logged in". It
// is the only place the extension consults for identity; no other cache may
// shadow it.
type AuthState struct {
	SessionToken string           `json:"sessionToken"`
	Profile      *session.Profile `json:"profile,omitempty"`
	LastSyncedAt time.Time        `json:"lastSyncedAt"`
}

// Store persists exactly one AuthState record. Writes are last-write-wins;
// they only ever originate from the AUTH_SYNC handler, so no versioning or
// merge semantics are needed.
type Store interface {
	// Read returns the current auth state, or nil with no error before any
	// sync has happened.
	Read(ctx context.Context) (*AuthState, error)
	Write(ctx context.Context, state AuthState) error
}

// MemoryStore keeps the record in memory. Used in tests and ephemeral
// extension sessions.
type MemoryStore struct {
	mu    sync.RWMutex
	state *AuthState
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory credential store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns the stored state, nil if nothing was synced yet
func (s *MemoryStore) Read(ctx context.Context) (*AuthState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state == nil {
		return nil, nil
	}
	stateCopy := *s.state
	if s.state.Profile != nil {
		profileCopy := *s.state.Profile
		stateCopy.Profile = &profileCopy
	}
	return &stateCopy, nil
}

// Write replaces the record
func (s *MemoryStore) Write(ctx context.Context, state AuthState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = &state
	return nil
}
