package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newLocalValidator(t *testing.T) *LocalValidator {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	return NewLocalValidator([]LocalUser{
		{Email: "jo@example.com", Name: "Jo", HashedPassword: hash},
	})
}

func TestLocalLoginAndMe(t *testing.T) {
	validator := newLocalValidator(t)

	result, err := validator.Login(context.Background(), "jo@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	assert.Equal(t, "jo@example.com", result.User.Email)

	profile, err := validator.Me(context.Background(), result.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "Jo", profile.DisplayName)
}

func TestLocalLoginFailures(t *testing.T) {
	validator := newLocalValidator(t)

	_, err := validator.Login(context.Background(), "jo@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = validator.Login(context.Background(), "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalLoginMintsDistinctTokens(t *testing.T) {
	validator := newLocalValidator(t)

	first, err := validator.Login(context.Background(), "jo@example.com", "hunter2")
	require.NoError(t, err)
	second, err := validator.Login(context.Background(), "jo@example.com", "hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first.SessionToken, second.SessionToken)
}

func TestLocalSignupThenLogin(t *testing.T) {
	validator := newLocalValidator(t)

	user, err := validator.Signup(context.Background(), "new@example.com", "s3cret", "New User")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)

	result, err := validator.Login(context.Background(), "new@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "New User", result.User.Name)
}

func TestLocalSignupExistingAccount(t *testing.T) {
	validator := newLocalValidator(t)

	_, err := validator.Signup(context.Background(), "jo@example.com", "hunter2", "Jo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalRevoke(t *testing.T) {
	validator := newLocalValidator(t)

	result, err := validator.Login(context.Background(), "jo@example.com", "hunter2")
	require.NoError(t, err)

	validator.Revoke(result.SessionToken)
	_, err = validator.Me(context.Background(), result.SessionToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Revoking again is a no-op
	validator.Revoke(result.SessionToken)
}
