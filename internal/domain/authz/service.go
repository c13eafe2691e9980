package authz

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/astro-web3/token-authorizer/internal/domain/token"
	"github.com/astro-web3/token-authorizer/internal/infra/cache"
	"github.com/astro-web3/token-authorizer/internal/infra/cognito"
	"github.com/astro-web3/token-authorizer/pkg/logger"
)

// Service is the per-request decision pipeline:
// extract -> decode -> local validate -> cache lookup -> oracle -> decide.
// Every stage failure short-circuits to Deny; Allow is reachable only
// through the full successful path.
type Service interface {
	Authorize(ctx context.Context, authorizationHeader string) (*Decision, error)
}

type service struct {
	validator *Validator
	oracle    cognito.RevocationOracle
	cache     cache.DecisionCache
	cacheTTL  time.Duration
}

// NewService wires the pipeline. cacheTTL is the positive-cache ceiling; a
// zero or negative value disables caching regardless of the cache
// implementation passed in.
func NewService(
	validator *Validator,
	oracle cognito.RevocationOracle,
	decisionCache cache.DecisionCache,
	cacheTTL time.Duration,
) Service {
	if decisionCache == nil {
		decisionCache = cache.NewNoopCache()
	}
	return &service{
		validator: validator,
		oracle:    oracle,
		cache:     decisionCache,
		cacheTTL:  cacheTTL,
	}
}

func (s *service) Authorize(ctx context.Context, authorizationHeader string) (*Decision, error) {
	raw, err := token.ExtractBearer(authorizationHeader)
	if err != nil {
		return denyDecision(extractKind(err), err.Error()), nil
	}

	claims, err := token.DecodeClaims(raw)
	if err != nil {
		return denyDecision(KindMalformedToken, err.Error()), nil
	}

	if kind, reason := s.validator.Validate(claims); kind != KindNone {
		return denyDecision(kind, reason), nil
	}

	fingerprint := claims.Fingerprint()

	if cached := s.cachedDecision(ctx, fingerprint); cached != nil {
		return cached, nil
	}

	// A cache miss or cache error always falls through to a live call;
	// nothing on this path may produce Allow without the oracle.
	result := s.oracle.CheckToken(ctx, raw)
	if result == nil {
		return denyDecision(KindInternalError, "oracle returned no result"), nil
	}

	switch result.Status {
	case cognito.StatusActive:
		// fall through to decide
	case cognito.StatusRevoked:
		return denyDecision(KindRevoked, result.Reason), nil
	case cognito.StatusUnavailable:
		return denyDecision(KindUnavailable, result.Reason), nil
	default:
		return denyDecision(KindInternalError, "unknown oracle status"), nil
	}

	decision := allowDecision(claims)
	s.storeDecision(ctx, fingerprint, claims, decision)
	return decision, nil
}

// cachedDecision returns a replayed Allow when an unexpired entry exists
// for the fingerprint, nil otherwise.
func (s *service) cachedDecision(ctx context.Context, fingerprint string) *Decision {
	if s.cacheTTL <= 0 || fingerprint == "" {
		return nil
	}

	entry, err := s.cache.Get(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.WarnContext(ctx, "decision cache read failed, falling back to oracle",
				slog.String("error", err.Error()))
		}
		return nil
	}
	if entry == nil || !time.Now().Before(entry.ExpiresAt) {
		return nil
	}

	return &Decision{
		Effect:      EffectAllow,
		PrincipalID: entry.PrincipalID,
		Context:     entry.Context,
	}
}

// storeDecision caches a confirmed Allow. Entry lifetime is the smaller of
// the configured ceiling and the remaining token lifetime, so a cached
// decision never outlives its token.
func (s *service) storeDecision(ctx context.Context, fingerprint string, claims *token.Claims, decision *Decision) {
	if s.cacheTTL <= 0 || fingerprint == "" || claims.Expiry == nil {
		return
	}

	ttl := s.cacheTTL
	if remaining := time.Until(epochTime(*claims.Expiry)); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return
	}

	entry := &cache.Entry{
		PrincipalID: decision.PrincipalID,
		Context:     decision.Context,
		ExpiresAt:   time.Now().Add(ttl),
	}
	if err := s.cache.Put(ctx, fingerprint, entry, ttl); err != nil {
		logger.WarnContext(ctx, "failed to cache decision", slog.String("error", err.Error()))
	}
}

func extractKind(err error) Kind {
	if errors.Is(err, token.ErrMalformedScheme) {
		return KindMalformedScheme
	}
	return KindMissingToken
}
