package token

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedToken = errors.New("malformed token")

const minTokenSegments = 2

// Claims is the claim set decoded from a token's payload segment. The
// decode is deliberately unverified: authenticity is established by the
// revocation oracle, never locally.
type Claims struct {
	Subject  string
	Issuer   string
	TokenUse string
	Scope    string
	ClientID string
	Username string
	JTI      string
	// Expiry is the exp claim in epoch seconds, nil when absent or
	// non-numeric.
	Expiry *float64
}

// DecodeClaims splits a compact dot-delimited token and decodes its payload
// segment into a claim set. Tokens with fewer than two segments, an
// undecodable payload, or a non-object payload are rejected as malformed.
func DecodeClaims(tok string) (*Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < minTokenSegments {
		return nil, fmt.Errorf("%w: expected at least %d segments, got %d", ErrMalformedToken, minTokenSegments, len(parts))
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload segment: %v", ErrMalformedToken, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: unmarshal payload: %v", ErrMalformedToken, err)
	}

	return &Claims{
		Subject:  stringClaim(raw, "sub"),
		Issuer:   stringClaim(raw, "iss"),
		TokenUse: stringClaim(raw, "token_use"),
		Scope:    stringClaim(raw, "scope"),
		ClientID: stringClaim(raw, "client_id"),
		Username: stringClaim(raw, "username"),
		JTI:      stringClaim(raw, "jti"),
		Expiry:   numericClaim(raw, "exp"),
	}, nil
}

// Fingerprint returns a stable, non-reversible cache key derived from the
// jti and sub claims. It is empty when the token carries neither, in which
// case the token must never be cached: a shared fingerprint across
// principals would let one principal's Allow serve another's token.
func (c *Claims) Fingerprint() string {
	if c.JTI == "" && c.Subject == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.JTI + "\n" + c.Subject))
	return hex.EncodeToString(sum[:])
}

// Principal returns the client identifier claim, preferring client_id over
// username.
func (c *Claims) Principal() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.Username
}

// decodeSegment base64url-decodes a token segment, accepting both padded
// and unpadded input.
func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}

func stringClaim(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func numericClaim(raw map[string]any, key string) *float64 {
	f, ok := raw[key].(float64)
	if !ok {
		return nil
	}
	return &f
}
