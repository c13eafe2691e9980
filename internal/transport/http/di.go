package http

import (
	"context"
	"fmt"
	"net/http"

	appauthz "github.com/astro-web3/token-authorizer/internal/app/authz"
	"github.com/astro-web3/token-authorizer/internal/config"
	authzdomain "github.com/astro-web3/token-authorizer/internal/domain/authz"
	"github.com/astro-web3/token-authorizer/internal/infra/cache"
	"github.com/astro-web3/token-authorizer/internal/infra/cognito"
	"github.com/astro-web3/token-authorizer/pkg/logger"
	"github.com/astro-web3/token-authorizer/pkg/otel"
	"github.com/astro-web3/token-authorizer/pkg/tracer"
)

type Server struct {
	httpServer *http.Server
}

const (
	idleTimeoutMultiplier = 2
	serviceName           = "token-authorizer"
)

func NewServer(cfg *config.Config) (*Server, error) {
	logger.InitLogger(cfg.Observability.LogLevel, cfg.Observability.Format, cfg.Observability.LogSource)

	otelCfg := otel.Config{
		ServiceName:        serviceName,
		EndpointURL:        cfg.Observability.TracingEndpointURL,
		Enabled:            cfg.Observability.TraceEnabled,
		SampleRatio:        1.0,
		Insecure:           true,
		ResourceAttributes: make(map[string]string),
	}
	if err := tracer.InitTracer(serviceName, otelCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	decisionCache, err := buildDecisionCache(cfg)
	if err != nil {
		return nil, err
	}

	oracle := cognito.NewClient(
		cfg.OracleEndpoint(),
		cfg.Auth.OracleTimeout,
		cfg.Auth.OracleRetryWait,
	)
	validator := authzdomain.NewValidator(cfg.IssuerURL(), cfg.Auth.AcceptedTokenUses)

	domainService := authzdomain.NewService(validator, oracle, decisionCache, cfg.Auth.CacheTTL)
	appService := appauthz.NewService(domainService)

	handler := NewHandler(appService)
	router := NewRouter(handler, cfg)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * idleTimeoutMultiplier,
	}

	return &Server{
		httpServer: httpServer,
	}, nil
}

// buildDecisionCache picks the cache backing: no-op when caching is
// disabled, redis when configured, otherwise a process-local store.
func buildDecisionCache(cfg *config.Config) (cache.DecisionCache, error) {
	if cfg.Auth.CacheTTL <= 0 {
		return cache.NewNoopCache(), nil
	}

	if cfg.Redis.URL != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		return cache.NewRedisCache(redisClient), nil
	}

	return cache.NewMemoryCache(), nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
