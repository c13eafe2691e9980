package token_test

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/astro-web3/token-authorizer/internal/domain/token"
	"github.com/golang-jwt/jwt/v4"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestExtractBearer_MissingHeader(t *testing.T) {
	_, err := token.ExtractBearer("")
	if !errors.Is(err, token.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}

	_, err = token.ExtractBearer("   ")
	if !errors.Is(err, token.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken for whitespace header, got %v", err)
	}
}

func TestExtractBearer_WrongScheme(t *testing.T) {
	_, err := token.ExtractBearer("Basic dXNlcjpwYXNz")
	if !errors.Is(err, token.ErrMalformedScheme) {
		t.Errorf("expected ErrMalformedScheme, got %v", err)
	}
}

func TestExtractBearer_EmptyCredential(t *testing.T) {
	_, err := token.ExtractBearer("Bearer")
	if !errors.Is(err, token.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken for bare scheme, got %v", err)
	}

	_, err = token.ExtractBearer("Bearer   ")
	if !errors.Is(err, token.ErrMissingToken) {
		t.Errorf("expected ErrMissingToken for empty credential, got %v", err)
	}
}

func TestExtractBearer_CaseInsensitiveScheme(t *testing.T) {
	for _, header := range []string{"Bearer tok", "bearer tok", "BEARER tok", "  Bearer tok  "} {
		got, err := token.ExtractBearer(header)
		if err != nil {
			t.Errorf("header %q: unexpected error: %v", header, err)
			continue
		}
		if got != "tok" {
			t.Errorf("header %q: expected credential 'tok', got %q", header, got)
		}
	}
}

func TestDecodeClaims_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	tok := mintToken(t, jwt.MapClaims{
		"sub":       "u1",
		"iss":       "issuer/pool-1",
		"token_use": "access",
		"scope":     "aws.cognito.signin.user.admin",
		"client_id": "client-1",
		"jti":       "jti-1",
		"exp":       exp,
	})

	claims, err := token.DecodeClaims(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Subject != "u1" {
		t.Errorf("expected sub 'u1', got %q", claims.Subject)
	}
	if claims.Issuer != "issuer/pool-1" {
		t.Errorf("expected iss 'issuer/pool-1', got %q", claims.Issuer)
	}
	if claims.TokenUse != "access" {
		t.Errorf("expected token_use 'access', got %q", claims.TokenUse)
	}
	if claims.Expiry == nil || int64(*claims.Expiry) != exp {
		t.Errorf("expected exp %d, got %v", exp, claims.Expiry)
	}
	if claims.Principal() != "client-1" {
		t.Errorf("expected principal 'client-1', got %q", claims.Principal())
	}
}

func TestDecodeClaims_TwoSegments(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1"}`))

	claims, err := token.DecodeClaims("header." + payload)
	if err != nil {
		t.Fatalf("unexpected error for two-segment token: %v", err)
	}
	if claims.Subject != "u1" {
		t.Errorf("expected sub 'u1', got %q", claims.Subject)
	}
}

func TestDecodeClaims_PaddedPayload(t *testing.T) {
	// Standard base64url with padding; the decoder must normalize it.
	payload := base64.URLEncoding.EncodeToString([]byte(`{"sub":"u"}`))

	claims, err := token.DecodeClaims("header." + payload + ".sig")
	if err != nil {
		t.Fatalf("unexpected error for padded payload: %v", err)
	}
	if claims.Subject != "u" {
		t.Errorf("expected sub 'u', got %q", claims.Subject)
	}
}

func TestDecodeClaims_Malformed(t *testing.T) {
	cases := map[string]string{
		"single segment": "no-dots-here",
		"bad base64":     "header.!!!not-base64!!!.sig",
		"bad json":       "header." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig",
		"array payload":  "header." + base64.RawURLEncoding.EncodeToString([]byte("[1,2]")) + ".sig",
	}

	for name, tok := range cases {
		if _, err := token.DecodeClaims(tok); !errors.Is(err, token.ErrMalformedToken) {
			t.Errorf("%s: expected ErrMalformedToken, got %v", name, err)
		}
	}
}

func TestDecodeClaims_NonNumericExp(t *testing.T) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"u1","exp":"soon"}`))

	claims, err := token.DecodeClaims("header." + payload + ".sig")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Expiry != nil {
		t.Errorf("expected nil expiry for non-numeric exp, got %v", *claims.Expiry)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := &token.Claims{JTI: "jti-1", Subject: "u1"}
	b := &token.Claims{JTI: "jti-1", Subject: "u1"}
	c := &token.Claims{JTI: "jti-2", Subject: "u1"}

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("expected identical claims to produce identical fingerprints")
	}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("expected different jti to produce different fingerprints")
	}
	if a.Fingerprint() == "jti-1\nu1" {
		t.Error("fingerprint must not be the raw claim pair")
	}
}

func TestFingerprint_EmptyWithoutIdentity(t *testing.T) {
	claims := &token.Claims{TokenUse: "access"}
	if claims.Fingerprint() != "" {
		t.Errorf("expected empty fingerprint without jti/sub, got %q", claims.Fingerprint())
	}
}
