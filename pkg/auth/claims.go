// Package auth provides JWT-based authentication for vowsuite-reports.
// It validates tokens issued by the VowSuite identity service using
// JWKS endpoints.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims issued by the VowSuite identity
// service. RegisteredClaims carries the standard fields (sub, iss, exp)
// and the custom claims scope the token to one wedding.
type Claims struct {
	jwt.RegisteredClaims
	WeddingID string `json:"wid,omitempty"`   // Wedding UUID the token grants access to
	Email     string `json:"email,omitempty"` // Admin email address
	Role      string `json:"role,omitempty"`  // owner, admin or viewer
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// ExtractClaimsFromContext extracts the wedding ID and admin ID from
// JWT claims in context. Returns an error if not authenticated or the
// claims are incomplete.
func ExtractClaimsFromContext(ctx context.Context) (uuid.UUID, string, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, "", fmt.Errorf("authentication required: no claims in context")
	}

	if claims.WeddingID == "" {
		return uuid.Nil, "", fmt.Errorf("missing wedding ID in JWT claims")
	}

	weddingID, err := uuid.Parse(claims.WeddingID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid wedding ID format: %w", err)
	}

	adminID := claims.Subject
	if adminID == "" {
		return uuid.Nil, "", fmt.Errorf("missing admin ID in JWT claims")
	}

	return weddingID, adminID, nil
}
