package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/astro-web3/token-authorizer/internal/domain/authz"
	httptransport "github.com/astro-web3/token-authorizer/internal/transport/http"
	"github.com/gin-gonic/gin"
)

type mockAppService struct {
	checkFunc func(ctx context.Context, authorizationHeader string) (*authz.Decision, error)
}

func (m *mockAppService) Check(ctx context.Context, authorizationHeader string) (*authz.Decision, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, authorizationHeader)
	}
	return &authz.Decision{
		Effect:      authz.EffectAllow,
		PrincipalID: "u1",
		Context: map[string]string{
			authz.ContextKeySubject:  "u1",
			authz.ContextKeyTokenUse: "access",
		},
	}, nil
}

func newTestRouter(svc *mockAppService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Any("/authz/check", httptransport.NewHandler(svc).Check)
	return router
}

func TestHandler_Check_Allow(t *testing.T) {
	router := newTestRouter(&mockAppService{})

	req := httptest.NewRequest(http.MethodGet, "/authz/check", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("X-Auth-Subject") != "u1" {
		t.Errorf("expected X-Auth-Subject header, got %q", w.Header().Get("X-Auth-Subject"))
	}
	if w.Header().Get("X-Auth-Token-Use") != "access" {
		t.Errorf("expected X-Auth-Token-Use header, got %q", w.Header().Get("X-Auth-Token-Use"))
	}

	var body struct {
		Effect      string            `json:"effect"`
		PrincipalID string            `json:"principalId"`
		Context     map[string]string `json:"context"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal decision body: %v", err)
	}
	if body.Effect != "ALLOW" || body.PrincipalID != "u1" {
		t.Errorf("unexpected decision body: %+v", body)
	}
}

func TestHandler_Check_DenyIsOpaque(t *testing.T) {
	router := newTestRouter(&mockAppService{
		checkFunc: func(_ context.Context, _ string) (*authz.Decision, error) {
			return &authz.Decision{
				Effect: authz.EffectDeny,
				Kind:   authz.KindRevoked,
				Reason: "NotAuthorizedException: Access Token has been revoked",
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/authz/check", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}

	// The failure kind and reason stay internal.
	body := w.Body.String()
	if strings.Contains(body, "revoked") || strings.Contains(body, "NotAuthorized") {
		t.Errorf("deny response leaks internal diagnostics: %s", body)
	}
	if !strings.Contains(body, "Unauthorized") {
		t.Errorf("expected opaque Unauthorized body, got %s", body)
	}
}

func TestHandler_Check_MissingHeaderDenied(t *testing.T) {
	var gotHeader string
	router := newTestRouter(&mockAppService{
		checkFunc: func(_ context.Context, authorizationHeader string) (*authz.Decision, error) {
			gotHeader = authorizationHeader
			return &authz.Decision{Effect: authz.EffectDeny, Kind: authz.KindMissingToken}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/authz/check", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if gotHeader != "" {
		t.Errorf("expected empty header to reach the pipeline, got %q", gotHeader)
	}
}

func TestHandler_Check_LowercaseAuthorizationHeader(t *testing.T) {
	var gotHeader string
	router := newTestRouter(&mockAppService{
		checkFunc: func(_ context.Context, authorizationHeader string) (*authz.Decision, error) {
			gotHeader = authorizationHeader
			return &authz.Decision{Effect: authz.EffectDeny, Kind: authz.KindRevoked}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/authz/check", nil)
	// Header.Set canonicalizes the name, so a single Get covers any
	// casing the caller used on the wire.
	req.Header.Set("authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if gotHeader != "Bearer tok" {
		t.Errorf("expected lowercase header to reach the pipeline, got %q", gotHeader)
	}
}

func TestHandler_Check_InternalError(t *testing.T) {
	router := newTestRouter(&mockAppService{
		checkFunc: func(_ context.Context, _ string) (*authz.Decision, error) {
			return nil, context.DeadlineExceeded
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/authz/check", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
}
