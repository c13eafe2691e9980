package cognito

import "context"

// Status classifies the oracle's answer about a token.
type Status int

const (
	// StatusActive means the oracle identified the token holder; the
	// token is still honored at the source.
	StatusActive Status = iota
	// StatusRevoked means the oracle explicitly rejected the token:
	// unknown, expired or revoked at the source.
	StatusRevoked
	// StatusUnavailable covers everything else: timeout, throttling after
	// the bounded retry, transport errors, undecodable responses. Callers
	// must fail closed on it.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusRevoked:
		return "revoked"
	default:
		return "unavailable"
	}
}

// CheckResult is the tagged outcome of one revocation check.
type CheckResult struct {
	Status Status
	// Principal is the username the oracle reports for the token holder.
	// Set only when Status is StatusActive.
	Principal string
	// Reason is diagnostic detail for logs, never for responses.
	Reason string
}

// RevocationOracle asks an external authority whether a token is still
// honored. CheckToken is total: every failure mode is folded into the
// result's Status, so the Allow/Deny mapping downstream stays exhaustive.
type RevocationOracle interface {
	CheckToken(ctx context.Context, accessToken string) *CheckResult
}

// GetUser request/response wire types, application/x-amz-json-1.1.

type getUserRequest struct {
	AccessToken string `json:"AccessToken"`
}

type userAttribute struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type getUserResponse struct {
	Username       string          `json:"Username"`
	UserAttributes []userAttribute `json:"UserAttributes"`
}

type apiError struct {
	Type    string `json:"__type"`
	Message string `json:"message"`
}
