package crypto

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CSRFProtection issues and checks self-contained anti-forgery tokens. A
// token is "nonce:unix-seconds:signature", the signature covering the first
// two fields, so validation needs no server-side state and tokens survive
// restarts.
type CSRFProtection struct {
	key []byte
	ttl time.Duration
}

// NewCSRFProtection creates a protection instance over the given signing key
func NewCSRFProtection(key []byte, ttl time.Duration) CSRFProtection {
	return CSRFProtection{key: key, ttl: ttl}
}

// Generate mints a token valid for the configured lifetime
func (c *CSRFProtection) Generate() (string, error) {
	nonce, err := GenerateSecureToken()
	if err != nil {
		return "", fmt.Errorf("generating CSRF nonce: %w", err)
	}

	payload := nonce + ":" + strconv.FormatInt(time.Now().Unix(), 10)
	return payload + ":" + SignData(payload, c.key), nil
}

// Validate reports whether the token carries a valid signature and has not
// outlived the configured lifetime
func (c *CSRFProtection) Validate(token string) bool {
	split := strings.LastIndex(token, ":")
	if split < 0 {
		return false
	}
	payload, signature := token[:split], token[split+1:]

	// The nonce is base64url, so the payload's only separator is the one
	// before the timestamp
	nonce, issuedField, ok := strings.Cut(payload, ":")
	if !ok || nonce == "" {
		return false
	}
	issued, err := strconv.ParseInt(issuedField, 10, 64)
	if err != nil {
		return false
	}
	if time.Since(time.Unix(issued, 0)) > c.ttl {
		return false
	}

	return ValidateSignedData(payload, signature, c.key)
}
