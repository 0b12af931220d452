package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrMissingWeddingID     = errors.New("missing wedding ID in token")
	ErrWeddingIDMismatch    = errors.New("wedding ID mismatch between token and URL")
)

// AuthService defines the interface for authentication operations.
// This abstraction keeps HTTP handling separate from authentication
// logic, making both easier to test.
type AuthService interface {
	// ValidateRequest extracts and validates a Bearer JWT from the
	// Authorization header. Returns the validated claims and the raw
	// token string.
	ValidateRequest(r *http.Request) (*Claims, string, error)

	// RequireWeddingID validates that the claims contain a wedding ID.
	RequireWeddingID(claims *Claims) error

	// ValidateWeddingIDMatch ensures the URL wedding ID matches the
	// token wedding ID. If urlWeddingID is empty, validation is skipped.
	ValidateWeddingIDMatch(claims *Claims, urlWeddingID string) error
}

type authService struct {
	jwksClient JWKSClientInterface
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService with the given JWKS client.
func NewAuthService(jwksClient JWKSClientInterface, logger *zap.Logger) AuthService {
	return &authService{
		jwksClient: jwksClient,
		logger:     logger,
	}
}

func (s *authService) ValidateRequest(r *http.Request) (*Claims, string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		s.logger.Debug("No JWT found in request",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method))
		return nil, "", ErrMissingAuthorization
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		s.logger.Debug("Invalid Authorization header format",
			zap.String("path", r.URL.Path))
		return nil, "", ErrInvalidAuthFormat
	}
	tokenString := parts[1]

	claims, err := s.jwksClient.ValidateToken(tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path))
		return nil, "", err
	}

	return claims, tokenString, nil
}

func (s *authService) RequireWeddingID(claims *Claims) error {
	if claims.WeddingID == "" {
		return ErrMissingWeddingID
	}
	return nil
}

func (s *authService) ValidateWeddingIDMatch(claims *Claims, urlWeddingID string) error {
	if urlWeddingID != "" && claims.WeddingID != urlWeddingID {
		s.logger.Warn("Wedding ID mismatch",
			zap.String("url_wedding_id", urlWeddingID),
			zap.String("token_wedding_id", claims.WeddingID))
		return ErrWeddingIDMismatch
	}
	return nil
}

var _ AuthService = (*authService)(nil)
