package models

import "github.com/golang-jwt/jwt/v5"

// AuthClaims is the JWT claims structure issued by the identity provider.
// The subject is the user's id in the users table.
type AuthClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Name                 string `json:"name,omitempty"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id,omitempty"`
	IsAnonymous          bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AuthClaims) GetUserID() string {
	return c.Subject
}
