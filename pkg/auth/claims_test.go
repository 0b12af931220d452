package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestExtractClaimsFromContext(t *testing.T) {
	weddingID := uuid.New()

	tests := []struct {
		name    string
		claims  *Claims
		wantErr bool
	}{
		{
			name: "valid claims",
			claims: &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"},
				WeddingID:        weddingID.String(),
			},
		},
		{
			name: "missing wedding ID",
			claims: &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"},
			},
			wantErr: true,
		},
		{
			name: "malformed wedding ID",
			claims: &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"},
				WeddingID:        "not-a-uuid",
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			claims: &Claims{
				WeddingID: weddingID.String(),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), ClaimsKey, tt.claims)

			gotWedding, gotAdmin, err := ExtractClaimsFromContext(ctx)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotWedding != weddingID {
				t.Errorf("expected wedding ID %s, got %s", weddingID, gotWedding)
			}
			if gotAdmin != "admin-1" {
				t.Errorf("expected admin ID 'admin-1', got %q", gotAdmin)
			}
		})
	}
}

func TestExtractClaimsFromContext_NoClaims(t *testing.T) {
	_, _, err := ExtractClaimsFromContext(context.Background())
	if err == nil {
		t.Fatal("expected error for empty context")
	}
}

func TestGetToken(t *testing.T) {
	ctx := context.WithValue(context.Background(), TokenKey, "raw-token")

	token, ok := GetToken(ctx)
	if !ok || token != "raw-token" {
		t.Errorf("expected raw-token, got %q (ok=%v)", token, ok)
	}

	if _, ok := GetToken(context.Background()); ok {
		t.Error("expected no token in empty context")
	}
}
