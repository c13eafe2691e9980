package authz

import (
	"context"

	"github.com/astro-web3/token-authorizer/internal/domain/authz"
	"github.com/astro-web3/token-authorizer/internal/domain/token"
	"github.com/astro-web3/token-authorizer/pkg/tracer"
	"go.opentelemetry.io/otel/attribute"
)

type Service interface {
	Check(ctx context.Context, authorizationHeader string) (*authz.Decision, error)
}

type service struct {
	domainService authz.Service
}

func NewService(domainService authz.Service) Service {
	return &service{
		domainService: domainService,
	}
}

func (s *service) Check(ctx context.Context, authorizationHeader string) (*authz.Decision, error) {
	ctx, span := tracer.Start(ctx, "app.authz.Check")
	defer span.End()

	if prefix := tokenPrefix(authorizationHeader); prefix != "" {
		span.SetAttributes(attribute.String("token.prefix", prefix))
	}

	decision, err := s.domainService.Authorize(ctx, authorizationHeader)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.String("authz.effect", string(decision.Effect)))
	if !decision.Allowed() {
		span.SetAttributes(
			attribute.String("authz.kind", string(decision.Kind)),
			attribute.Bool("authz.local", decision.Kind.Local()),
		)
	}

	return decision, nil
}

const tokenPrefixLength = 8

// tokenPrefix returns a short, non-identifying span attribute for the
// credential. The raw token never reaches logs or spans in full.
func tokenPrefix(authorizationHeader string) string {
	credential, err := token.ExtractBearer(authorizationHeader)
	if err != nil {
		return ""
	}
	if len(credential) > tokenPrefixLength {
		return credential[:tokenPrefixLength] + "..."
	}
	return "***"
}
