package token

import (
	"errors"
	"strings"
)

var (
	ErrMissingToken    = errors.New("missing bearer token")
	ErrMalformedScheme = errors.New("malformed authorization scheme")
)

const bearerScheme = "Bearer"

// ExtractBearer pulls the bearer credential out of an Authorization header
// value. The scheme prefix is matched case-insensitively and surrounding
// whitespace is trimmed; the credential itself is returned untouched.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	scheme, rest, found := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrMalformedScheme
	}
	if !found {
		return "", ErrMissingToken
	}

	credential := strings.TrimSpace(rest)
	if credential == "" {
		return "", ErrMissingToken
	}

	return credential, nil
}
