package authz

import (
	"github.com/astro-web3/token-authorizer/internal/domain/token"
)

type Effect string

const (
	EffectAllow Effect = "ALLOW"
	EffectDeny  Effect = "DENY"
)

// Context keys are a strict allow-list. Nothing else — in particular not
// the raw token and not unlisted claims — may appear in a decision context.
const (
	ContextKeySubject  = "subject"
	ContextKeyClientID = "clientId"
	ContextKeyTokenUse = "tokenUse"
	ContextKeyScope    = "scope"
)

// Decision is the gateway-facing authorization verdict. Kind and Reason
// are internal diagnostics and must not be serialized toward the caller.
type Decision struct {
	Effect      Effect
	PrincipalID string
	Context     map[string]string
	Kind        Kind
	Reason      string
}

func (d *Decision) Allowed() bool {
	return d.Effect == EffectAllow
}

// allowDecision projects the claim set onto the context allow-list. The
// principal id is always the sub claim of the token that was checked.
func allowDecision(claims *token.Claims) *Decision {
	decisionContext := map[string]string{
		ContextKeySubject:  claims.Subject,
		ContextKeyTokenUse: claims.TokenUse,
	}
	if principal := claims.Principal(); principal != "" {
		decisionContext[ContextKeyClientID] = principal
	}
	if claims.Scope != "" {
		decisionContext[ContextKeyScope] = claims.Scope
	}

	return &Decision{
		Effect:      EffectAllow,
		PrincipalID: claims.Subject,
		Context:     decisionContext,
	}
}

func denyDecision(kind Kind, reason string) *Decision {
	return &Decision{
		Effect: EffectDeny,
		Kind:   kind,
		Reason: reason,
	}
}
