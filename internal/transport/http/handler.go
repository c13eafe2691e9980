package http

import (
	"net/http"

	"log/slog"

	appauthz "github.com/astro-web3/token-authorizer/internal/app/authz"
	"github.com/astro-web3/token-authorizer/internal/domain/authz"
	"github.com/astro-web3/token-authorizer/pkg/logger"
	"github.com/astro-web3/token-authorizer/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// contextHeaderNames maps decision context keys to the response headers the
// gateway forwards to the downstream handler. Only allow-listed keys have a
// header; an unknown key is silently dropped rather than leaked.
var contextHeaderNames = map[string]string{
	authz.ContextKeySubject:  "X-Auth-Subject",
	authz.ContextKeyClientID: "X-Auth-Client-Id",
	authz.ContextKeyTokenUse: "X-Auth-Token-Use",
	authz.ContextKeyScope:    "X-Auth-Scope",
}

type decisionResponse struct {
	Effect      string            `json:"effect"`
	PrincipalID string            `json:"principalId"`
	Context     map[string]string `json:"context"`
}

type Handler struct {
	appService appauthz.Service
}

func NewHandler(appService appauthz.Service) *Handler {
	return &Handler{
		appService: appService,
	}
}

// Check decides Allow/Deny for one protected request. The caller sees a
// binary outcome: 200 with the decision context, or an opaque 401. The
// failure kind stays in logs and spans.
func (h *Handler) Check(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.Check")
	defer span.End()

	authHeader := c.GetHeader("Authorization")

	decision, err := h.appService.Check(ctx, authHeader)
	if err != nil {
		span.RecordError(err)
		logger.ErrorContext(ctx, "failed to check authorization", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
		return
	}

	if !decision.Allowed() {
		span.SetAttributes(
			attribute.Bool("authz.allowed", false),
			attribute.String("authz.kind", string(decision.Kind)),
		)
		logger.WarnContext(ctx, "authorization denied",
			slog.String("kind", string(decision.Kind)),
			slog.String("reason", decision.Reason),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	span.SetAttributes(attribute.Bool("authz.allowed", true))

	for key, value := range decision.Context {
		if name, ok := contextHeaderNames[key]; ok {
			c.Header(name, value)
		}
	}

	c.JSON(http.StatusOK, decisionResponse{
		Effect:      string(decision.Effect),
		PrincipalID: decision.PrincipalID,
		Context:     decision.Context,
	})
}
