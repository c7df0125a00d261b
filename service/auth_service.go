package service

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/internal/eth"
	"github.com/layer-3/tollgate/ports"
)

// AuthService handles wallet authentication: challenge issuance and
// challenge-response login producing session tokens.
type AuthService struct {
	challenges ports.ChallengeStore
	tokenizer  ports.Tokenizer
	events     ports.EventPublisher
}

// NewAuthService creates a new authentication service
func NewAuthService(challenges ports.ChallengeStore, tokenizer ports.Tokenizer, events ports.EventPublisher) *AuthService {
	return &AuthService{
		challenges: challenges,
		tokenizer:  tokenizer,
		events:     events,
	}
}

// CreateChallenge generates a new one-time authentication challenge
func (s *AuthService) CreateChallenge(ctx context.Context) (*core.Challenge, error) {
	challenge, err := s.challenges.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return challenge, nil
}

// Login consumes the challenge named by nonce, verifies that signature over
// the challenge message recovers the claimed wallet address, and issues a
// session token. The challenge is spent regardless of whether verification
// succeeds.
func (s *AuthService) Login(ctx context.Context, nonce, signature, address string) (string, *core.SessionPayload, error) {
	if !core.ValidAddress(address) {
		return "", nil, core.ErrInvalidAddress
	}

	challenge, err := s.challenges.Consume(ctx, nonce)
	if err != nil {
		return "", nil, fmt.Errorf("failed to consume challenge: %w", err)
	}
	if challenge == nil {
		return "", nil, core.ErrInvalidChallenge
	}

	if !eth.Matches(challenge.Message, signature, address) {
		return "", nil, core.ErrInvalidSignature
	}

	token, err := s.tokenizer.Issue(address, challenge.Nonce)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	payload, err := s.tokenizer.Verify(token)
	if err != nil {
		return "", nil, fmt.Errorf("failed to verify issued token: %w", err)
	}

	// The session is already issued; a publish failure must not undo the login.
	if err := s.events.PublishLogin(ctx, payload.WalletAddress, payload.TokenID); err != nil {
		slogctx.Warn(ctx, "failed to publish login event", "error", err)
	}

	return token, payload, nil
}

// Logout announces the end of a session. An invalid or expired token means
// there is nothing to announce; logout stays idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	payload, err := s.tokenizer.Verify(token)
	if err != nil {
		slogctx.Debug(ctx, "logout with unverifiable token", "error", err)
		return nil
	}

	if err := s.events.PublishLogout(ctx, payload.WalletAddress, payload.TokenID); err != nil {
		return fmt.Errorf("failed to publish logout event: %w", err)
	}

	return nil
}
