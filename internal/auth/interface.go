package auth

import "arbor/internal/domain/models"

// JWTVerifier verifies bearer tokens for the auth middleware.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Any failure is reported as domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.AuthClaims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
