package tokenizer

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/ports"
)

const AudienceSession = "tollgate:session"

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs signed
// with a server-held key.
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
	ttl     time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer. A non-positive ttl falls back
// to the default session TTL.
func NewJWTTokenizer(signKey *ecdsa.PrivateKey, ttl time.Duration) *JWTTokenizer {
	if ttl <= 0 {
		ttl = core.DefaultSessionTTL
	}
	return &JWTTokenizer{signKey: signKey, ttl: ttl}
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)

// TTL returns the lifetime of issued tokens
func (j *JWTTokenizer) TTL() time.Duration {
	return j.ttl
}

// Issue mints a session token for the wallet address
func (j *JWTTokenizer) Issue(walletAddress, nonce string) (string, error) {
	if !core.ValidAddress(walletAddress) {
		return "", core.ErrInvalidAddress
	}

	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   walletAddress,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Nonce: nonce,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify parses and validates a session token
func (j *JWTTokenizer) Verify(tokenStr string) (*core.SessionPayload, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims type")
	}

	// Required claims: without any of these the payload is unusable.
	if claims.Subject == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, core.ErrInvalidToken
	}
	if !core.ValidAddress(claims.Subject) {
		return nil, core.ErrInvalidAddress
	}

	return &core.SessionPayload{
		WalletAddress: claims.Subject,
		IssuedAt:      claims.IssuedAt.Time,
		ExpiresAt:     claims.ExpiresAt.Time,
		Nonce:         claims.Nonce,
		TokenID:       claims.ID,
	}, nil
}
