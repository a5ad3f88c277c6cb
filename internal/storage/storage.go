package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a tracked session doesn't exist
var ErrSessionNotFound = errors.New("session not found")

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// UserInfo represents a user who has signed in through the dashboard
type UserInfo struct {
	Email     string    `json:"email"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// TrackedSession is the server-side record of an issued session. Only a
// digest of the token is stored; the opaque token itself lives in the
// browser cookie and the extension's credential store.
type TrackedSession struct {
	TokenDigest string    `json:"token_digest"`
	Email       string    `json:"email"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	LastActive  time.Time `json:"last_active"`
}

// DigestToken derives the storage key for a session token
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Store combines the session and user tracking capabilities of
// scrapter-front. Tracking is observational: the route guard never consults
// it, so a storage outage cannot take down the auth boundary.
type Store interface {
	TrackSession(ctx context.Context, session TrackedSession) error
	RevokeSession(ctx context.Context, tokenDigest string) error
	GetActiveSessions(ctx context.Context) ([]TrackedSession, error)

	UpsertUser(ctx context.Context, email string) error
	GetAllUsers(ctx context.Context) ([]UserInfo, error)

	Close() error
}
