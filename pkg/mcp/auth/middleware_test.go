package mcpauth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vowsuite-inc/vowsuite-reports/pkg/auth"
)

type mockJWKSClient struct {
	claims *auth.Claims
	err    error
}

func (m *mockJWKSClient) ValidateToken(tokenString string) (*auth.Claims, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.claims, nil
}

func (m *mockJWKSClient) Close() {}

func newTestMux(jwks auth.JWKSClientInterface, handler http.HandlerFunc) *http.ServeMux {
	authService := auth.NewAuthService(jwks, zap.NewNop())
	mw := NewMiddleware(authService, zap.NewNop())

	mux := http.NewServeMux()
	mux.Handle("POST /api/weddings/{wid}/mcp", mw.RequireAuth("wid")(handler))
	return mux
}

func TestRequireAuth_Success(t *testing.T) {
	weddingID := "11111111-2222-3333-4444-555555555555"
	jwks := &mockJWKSClient{claims: &auth.Claims{WeddingID: weddingID}}

	var gotClaims *auth.Claims
	mux := newTestMux(jwks, func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = auth.GetClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/weddings/"+weddingID+"/mcp", nil)
	req.Header.Set("Authorization", "Bearer token")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotClaims == nil || gotClaims.WeddingID != weddingID {
		t.Error("claims not injected into context")
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	mux := newTestMux(&mockJWKSClient{}, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/weddings/w1/mcp", nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	header := rec.Header().Get("WWW-Authenticate")
	if !strings.Contains(header, `Bearer error="invalid_token"`) {
		t.Errorf("expected RFC 6750 error header, got %q", header)
	}
}

func TestRequireAuth_WeddingMismatch(t *testing.T) {
	jwks := &mockJWKSClient{claims: &auth.Claims{WeddingID: "wedding-a"}}
	mux := newTestMux(jwks, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodPost, "/api/weddings/wedding-b/mcp", nil)
	req.Header.Set("Authorization", "Bearer token")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("WWW-Authenticate"), "insufficient_scope") {
		t.Error("expected insufficient_scope error")
	}
}
