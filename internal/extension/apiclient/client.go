package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/scrapter/scrapter-front/internal/extension/credstore"
	"github.com/scrapter/scrapter-front/internal/log"
	"github.com/scrapter/scrapter-front/internal/session"
)

// APIError is a typed failure from the backend. The raw transport or parse
// error never crosses this package's boundary.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// Client is the extension's request layer. The bearer token is resolved
// from the credential store immediately before each call, never cached, so
// a revoked or updated token takes effect on the very next request.
type Client struct {
	baseURL    string
	creds      credstore.Store
	httpClient *http.Client
}

// New creates an API client over the given credential store
func New(baseURL string, creds credstore.Store) *Client {
	return &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Do issues one request. A token is attached as a Bearer header only when
// the credential store currently holds one; without a token the request is
// still sent and the server rejects protected endpoints itself. On non-2xx
// responses the JSON error body is surfaced as an *APIError, falling back
// to a generic message when the body cannot be parsed. On success the JSON
// response is decoded into out (which may be nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.currentToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogDebugWithFields("apiclient", "Request transport failure", map[string]any{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return &APIError{Status: 0, Message: "Connection failed"}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(resp),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: "Unknown error"}
	}
	return nil
}

// Me fetches the authenticated profile from GET /v1/me
func (c *Client) Me(ctx context.Context) (*session.Profile, error) {
	var profile session.Profile
	if err := c.Do(ctx, http.MethodGet, "/v1/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// currentToken reads the bearer token fresh from the credential store.
// Absence of any auth state is an expected condition, not an error.
func (c *Client) currentToken(ctx context.Context) string {
	state, err := c.creds.Read(ctx)
	if err != nil {
		log.LogWarnWithFields("apiclient", "Credential store read failed", map[string]any{
			"error": err.Error(),
		})
		return ""
	}
	if state == nil {
		return ""
	}
	return state.SessionToken
}

// decodeErrorMessage extracts a human-readable message from an error body,
// falling back to a generic message when parsing fails
func decodeErrorMessage(resp *http.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "Unknown error"
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return "Unknown error"
}
