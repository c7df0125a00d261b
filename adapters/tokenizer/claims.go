package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with session-specific ones
type SessionClaims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce,omitempty"` // nonce of the consumed login challenge
}
