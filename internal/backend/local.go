package backend

import (
	"context"
	"fmt"
	"sync"

	"github.com/scrapter/scrapter-front/internal/crypto"
	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/session"
	"golang.org/x/crypto/bcrypt"
)

// LocalUser is a statically configured development account
type LocalUser struct {
	Email          string
	Name           string
	HashedPassword []byte // bcrypt hash
}

// LocalValidator implements Authenticator against a static user list. It is
// the development-mode stand-in for the backend API: it mints opaque tokens
// and answers profile fetches for them, so the whole issuance/guard/bridge
// path works without a running backend.
type LocalValidator struct {
	mu     sync.RWMutex
	users  map[string]LocalUser // keyed by email
	tokens map[string]string    // token -> email
}

var _ Authenticator = (*LocalValidator)(nil)

// NewLocalValidator creates a local validator over the given accounts
func NewLocalValidator(users []LocalUser) *LocalValidator {
	byEmail := make(map[string]LocalUser, len(users))
	for _, u := range users {
		byEmail[u.Email] = u
	}
	return &LocalValidator{
		users:  byEmail,
		tokens: make(map[string]string),
	}
}

// Login validates the password against the stored bcrypt hash and mints a
// session token on success
func (v *LocalValidator) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	v.mu.RLock()
	user, ok := v.users[email]
	v.mu.RUnlock()

	// Compare against a throwaway hash for unknown accounts so the timing
	// does not reveal whether the email exists
	if !ok {
		_ = bcrypt.CompareHashAndPassword(unknownUserHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := crypto.GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("minting session token: %w", err)
	}

	v.mu.Lock()
	v.tokens[token] = email
	v.mu.Unlock()

	log.LogDebugWithFields("backend", "Local login succeeded", map[string]any{
		"email": email,
	})

	return &LoginResult{
		SessionToken: token,
		User:         User{Email: user.Email, Name: user.Name},
	}, nil
}

// Signup registers the account but establishes no session, mirroring the
// backend's verify-email-first behavior
func (v *LocalValidator) Signup(ctx context.Context, email, password, name string) (*User, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.users[email]; exists {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	v.users[email] = LocalUser{Email: email, Name: name, HashedPassword: hash}
	return &User{Email: email, Name: name}, nil
}

// Me resolves a minted token back to its profile
func (v *LocalValidator) Me(ctx context.Context, token string) (*session.Profile, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	email, ok := v.tokens[token]
	if !ok {
		return nil, ErrUnauthorized
	}
	user := v.users[email]
	return &session.Profile{Email: user.Email, DisplayName: user.Name}, nil
}

// Revoke invalidates a minted token. Unknown tokens are a no-op.
func (v *LocalValidator) Revoke(token string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.tokens, token)
}

// bcrypt hash of an unguessable value, used only to equalize timing
var unknownUserHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("scrapter-front-no-such-user"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
