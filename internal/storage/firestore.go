package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/scrapter/scrapter-front/internal/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements session/user tracking on Google Cloud Firestore.
//
// Error handling strategy:
// - Read operations: return errors (callers need real data or an explicit failure)
// - Write operations: log and continue (tracking is observational; a write
//   failure must not break login or signout)
type FirestoreStore struct {
	client             *firestore.Client
	projectID          string
	sessionsCollection string
	usersCollection    string
}

// Ensure FirestoreStore implements the Store interface
var _ Store = (*FirestoreStore)(nil)

// sessionDoc is the Firestore representation of a tracked session
type sessionDoc struct {
	TokenDigest string    `firestore:"token_digest"`
	Email       string    `firestore:"email"`
	IssuedAt    time.Time `firestore:"issued_at"`
	ExpiresAt   time.Time `firestore:"expires_at"`
	LastActive  time.Time `firestore:"last_active"`
}

// userDoc is the Firestore representation of a dashboard user
type userDoc struct {
	Email     string    `firestore:"email"`
	FirstSeen time.Time `firestore:"first_seen"`
	LastSeen  time.Time `firestore:"last_seen"`
}

// NewFirestoreStore creates a Firestore-backed store
func NewFirestoreStore(ctx context.Context, projectID, database, collectionPrefix string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required")
	}
	if collectionPrefix == "" {
		collectionPrefix = "scrapter_front"
	}

	var client *firestore.Client
	var err error

	if database != "" && database != "(default)" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, database)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating Firestore client: %w", err)
	}

	return &FirestoreStore{
		client:             client,
		projectID:          projectID,
		sessionsCollection: collectionPrefix + "_sessions",
		usersCollection:    collectionPrefix + "_users",
	}, nil
}

// sessionRefreshUpdates is the field set a refresh of an existing record may
// touch. Issuance metadata (issued_at, expires_at) is written once at track
// time and must survive every later refresh.
func sessionRefreshUpdates(now time.Time) []firestore.Update {
	return []firestore.Update{
		{Path: "last_active", Value: now},
	}
}

// TrackSession creates or refreshes a session record. An existing record only
// gets its activity timestamp bumped, matching MemoryStore.
func (s *FirestoreStore) TrackSession(ctx context.Context, session TrackedSession) error {
	ref := s.client.Collection(s.sessionsCollection).Doc(session.TokenDigest)

	_, err := ref.Get(ctx)
	if err == nil {
		if _, err := ref.Update(ctx, sessionRefreshUpdates(time.Now())); err != nil {
			log.LogErrorWithFields("storage", "Failed to refresh session in Firestore", map[string]any{
				"email": session.Email,
				"error": err.Error(),
			})
		}
		return nil
	}
	if status.Code(err) != codes.NotFound {
		log.LogErrorWithFields("storage", "Failed to read session from Firestore", map[string]any{
			"email": session.Email,
			"error": err.Error(),
		})
		return nil
	}

	if session.LastActive.IsZero() {
		session.LastActive = time.Now()
	}
	if _, err := ref.Set(ctx, sessionDoc(session)); err != nil {
		log.LogErrorWithFields("storage", "Failed to track session in Firestore", map[string]any{
			"email": session.Email,
			"error": err.Error(),
		})
	}
	return nil
}

// RevokeSession removes a session record. Missing docs are fine: signout is
// idempotent.
func (s *FirestoreStore) RevokeSession(ctx context.Context, tokenDigest string) error {
	_, err := s.client.Collection(s.sessionsCollection).Doc(tokenDigest).Delete(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		log.LogErrorWithFields("storage", "Failed to revoke session in Firestore", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

// GetActiveSessions returns all unexpired session records
func (s *FirestoreStore) GetActiveSessions(ctx context.Context) ([]TrackedSession, error) {
	now := time.Now()
	var sessions []TrackedSession

	iter := s.client.Collection(s.sessionsCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating sessions: %w", err)
		}

		var record sessionDoc
		if err := doc.DataTo(&record); err != nil {
			log.LogWarnWithFields("storage", "Skipping malformed session doc", map[string]any{
				"doc":   doc.Ref.ID,
				"error": err.Error(),
			})
			continue
		}
		if !record.ExpiresAt.IsZero() && record.ExpiresAt.Before(now) {
			continue
		}
		sessions = append(sessions, TrackedSession(record))
	}
	return sessions, nil
}

// UpsertUser creates or updates a user's last seen time
func (s *FirestoreStore) UpsertUser(ctx context.Context, email string) error {
	ref := s.client.Collection(s.usersCollection).Doc(email)

	doc, err := ref.Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		log.LogErrorWithFields("storage", "Failed to read user from Firestore", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil
	}

	if err == nil && doc.Exists() {
		_, err = ref.Update(ctx, []firestore.Update{
			{Path: "last_seen", Value: time.Now()},
		})
	} else {
		_, err = ref.Set(ctx, userDoc{
			Email:     email,
			FirstSeen: time.Now(),
			LastSeen:  time.Now(),
		})
	}
	if err != nil {
		log.LogErrorWithFields("storage", "Failed to upsert user in Firestore", map[string]any{
			"email": email,
			"error": err.Error(),
		})
	}
	return nil
}

// GetAllUsers returns all users
func (s *FirestoreStore) GetAllUsers(ctx context.Context) ([]UserInfo, error) {
	var users []UserInfo

	iter := s.client.Collection(s.usersCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating users: %w", err)
		}

		var record userDoc
		if err := doc.DataTo(&record); err != nil {
			continue
		}
		users = append(users, UserInfo(record))
	}
	return users, nil
}

// Close releases the Firestore client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
