package authz

// Kind tags why a decision came out the way it did. Kinds are diagnostic
// only: they reach logs and span attributes, never a response body or the
// decision context.
type Kind string

const (
	KindNone              Kind = ""
	KindMissingToken      Kind = "missing_token"
	KindMalformedScheme   Kind = "malformed_scheme"
	KindMalformedToken    Kind = "malformed_token"
	KindExpired           Kind = "expired"
	KindIssuerMismatch    Kind = "issuer_mismatch"
	KindTokenTypeRejected Kind = "token_type_rejected"
	KindRevoked           Kind = "revoked"
	KindUnavailable       Kind = "unavailable"
	KindInternalError     Kind = "internal_error"
)

// Local reports whether the kind is resolved without an oracle round-trip.
func (k Kind) Local() bool {
	switch k {
	case KindRevoked, KindUnavailable:
		return false
	default:
		return true
	}
}
