package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/session"
)

// Error taxonomy of the credential-validation collaborator. Handlers convert
// these to user-facing messages; nothing below this package leaks a raw
// transport or parse failure.
var (
	// ErrInvalidCredentials never says whether the email or the password was
	// wrong, to prevent account enumeration
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConnection         = errors.New("connection failed")
	ErrUnauthorized       = errors.New("unauthorized")
)

// User is the backend's view of an account
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResult is a successful credential validation: a minted session token
// plus the account it belongs to
type LoginResult struct {
	SessionToken string `json:"sessionToken"`
	User         User   `json:"user"`
}

// Authenticator is the user-lookup/credential-validation collaborator. The
// backend API implements it over HTTP; LocalValidator implements it for
// development and tests.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Signup(ctx context.Context, email, password, name string) (*User, error)
	Me(ctx context.Context, token string) (*session.Profile, error)
}

// Client talks to the Scrapter backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ Authenticator = (*Client)(nil)

// NewClient creates a backend API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Login forwards credentials to POST /auth/login
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.post(ctx, "/auth/login", body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		var result LoginResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			log.LogErrorWithFields("backend", "Malformed login response", map[string]any{
				"error": err.Error(),
			})
			return nil, ErrConnection
		}
		if result.SessionToken == "" {
			return nil, ErrConnection
		}
		return &result, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidCredentials
	default:
		log.LogWarnWithFields("backend", "Unexpected login status", map[string]any{
			"status": resp.StatusCode,
		})
		return nil, ErrConnection
	}
}

// Signup forwards account creation to POST /auth/signup. No session is
// established; the backend requires email verification first.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*User, error) {
	body := map[string]string{"email": email, "password": password, "name": name}

	resp, err := c.post(ctx, "/auth/signup", body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, ErrConnection
	}

	var wrapper struct {
		User User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return nil, ErrConnection
	}
	return &wrapper.User, nil
}

// Me fetches the profile for a session token from GET /v1/me. A 401 means
// the session is expired or revoked and the caller should purge its cookies.
func (c *Client) Me(ctx context.Context, token string) (*session.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/me", nil)
	if err != nil {
		return nil, fmt.Errorf("building profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogDebugWithFields("backend", "Profile fetch transport failure", map[string]any{
			"error": err.Error(),
		})
		return nil, ErrConnection
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var profile session.Profile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, ErrConnection
		}
		return &profile, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrConnection
	}
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogDebugWithFields("backend", "Transport failure", map[string]any{
			"path":  path,
			"error": err.Error(),
		})
		return nil, ErrConnection
	}
	return resp, nil
}
