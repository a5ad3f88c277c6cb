package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A refresh of an existing record must never rewrite issuance metadata: the
// profile handler refreshes with only the digest and email set, and a full
// document write would zero issued_at and expires_at, leaving the session
// permanently unexpired.
func TestSessionRefreshTouchesOnlyActivity(t *testing.T) {
	updates := sessionRefreshUpdates(time.Now())

	require.Len(t, updates, 1)
	assert.Equal(t, "last_active", updates[0].Path)
	for _, u := range updates {
		assert.NotEqual(t, "issued_at", u.Path)
		assert.NotEqual(t, "expires_at", u.Path)
		assert.NotEqual(t, "token_digest", u.Path)
	}
}

func TestSessionDocCarriesAllFields(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	expires := time.Now().Add(time.Hour)

	doc := sessionDoc(TrackedSession{
		TokenDigest: DigestToken("token123"),
		Email:       "jo@example.com",
		IssuedAt:    issued,
		ExpiresAt:   expires,
		LastActive:  time.Now(),
	})

	assert.Equal(t, DigestToken("token123"), doc.TokenDigest)
	assert.Equal(t, "jo@example.com", doc.Email)
	assert.Equal(t, issued, doc.IssuedAt)
	assert.Equal(t, expires, doc.ExpiresAt)
	assert.False(t, doc.LastActive.IsZero())
}
