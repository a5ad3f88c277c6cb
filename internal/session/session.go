package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/scrapter/scrapter-front/internal/cookie"
)

// Session is the authenticated identity for one request. It is produced once
// from the request cookies and threaded through downstream consumers instead
// of re-parsing raw cookie strings in multiple places. The token is opaque:
// the backend owns session internals, this service only carries the handle.
type Session struct {
	Token    string
	Owner    string // owner email, from the profile snapshot when available
	IssuedAt time.Time
	Expiry   time.Time
}

// New creates a session value at issuance time
func New(token, owner string) Session {
	now := time.Now()
	return Session{
		Token:    token,
		Owner:    owner,
		IssuedAt: now,
		Expiry:   now.Add(cookie.SessionTTL),
	}
}

// Profile is the denormalized public projection of a user, safe to store in
// a script-readable cookie. It must never contain secrets.
type Profile struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Encode serializes the profile as URL-escaped JSON for use as a cookie value
func (p Profile) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(data)), nil
}

// DecodeProfile parses a profile cookie value
func DecodeProfile(raw string) (*Profile, error) {
	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(unescaped), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FromRequest derives the request's session from the cookie pair, or nil when
// no session cookie is present. Presence is the only signal evaluated here;
// token validity is delegated to the profile-fetch collaborator downstream.
func FromRequest(r *http.Request) *Session {
	token, err := cookie.GetSession(r)
	if err != nil || token == "" {
		return nil
	}

	s := &Session{Token: token}
	if raw, err := cookie.GetProfile(r); err == nil {
		if profile, err := DecodeProfile(raw); err == nil {
			s.Owner = profile.Email
		}
	}
	return s
}
