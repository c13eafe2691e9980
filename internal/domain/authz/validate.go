package authz

import (
	"fmt"
	"time"

	"github.com/astro-web3/token-authorizer/internal/domain/token"
)

// Validator runs the local, no-network checks over a decoded claim set.
// Checks run in a fixed order and short-circuit on the first failure, so
// an obviously bad token never costs an oracle call.
type Validator struct {
	issuer   string
	accepted map[string]struct{}
	now      func() time.Time
}

func NewValidator(issuer string, acceptedTokenUses []string) *Validator {
	if len(acceptedTokenUses) == 0 {
		acceptedTokenUses = []string{"access"}
	}

	accepted := make(map[string]struct{}, len(acceptedTokenUses))
	for _, use := range acceptedTokenUses {
		accepted[use] = struct{}{}
	}

	return &Validator{
		issuer:   issuer,
		accepted: accepted,
		now:      time.Now,
	}
}

// Validate returns KindNone on success, otherwise the failure kind and a
// diagnostic reason.
func (v *Validator) Validate(claims *token.Claims) (Kind, string) {
	if claims.Expiry == nil {
		return KindExpired, "exp claim missing or not numeric"
	}
	if !v.now().Before(epochTime(*claims.Expiry)) {
		return KindExpired, fmt.Sprintf("token expired at %s", epochTime(*claims.Expiry).Format(time.RFC3339))
	}

	if claims.Issuer != v.issuer {
		return KindIssuerMismatch, fmt.Sprintf("iss %q does not match configured issuer", claims.Issuer)
	}

	if _, ok := v.accepted[claims.TokenUse]; !ok {
		return KindTokenTypeRejected, fmt.Sprintf("token_use %q is not accepted", claims.TokenUse)
	}

	return KindNone, ""
}

func epochTime(seconds float64) time.Time {
	return time.Unix(int64(seconds), 0)
}
