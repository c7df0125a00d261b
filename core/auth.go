package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// DefaultChallengeTTL is how long a challenge stays consumable.
const DefaultChallengeTTL = 5 * time.Minute

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = time.Hour

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// Challenge is a single-use message a wallet must sign to prove key control.
type Challenge struct {
	Nonce     string
	Message   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewChallenge mints a challenge with a fresh random nonce and a
// human-readable message embedding it.
func NewChallenge(ttl time.Duration) (*Challenge, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	nonce := hex.EncodeToString(nonceBytes)
	now := time.Now()

	return &Challenge{
		Nonce:     nonce,
		Message:   ChallengeMessage(nonce, now),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// ChallengeMessage builds the text a wallet signs for the given nonce.
func ChallengeMessage(nonce string, issuedAt time.Time) string {
	return fmt.Sprintf(
		"Sign this message to verify you control this wallet.\n\nNonce: %s\nIssued At: %s",
		nonce, issuedAt.UTC().Format(time.RFC3339),
	)
}

// Expired reports whether the challenge is no longer consumable at t.
func (c *Challenge) Expired(t time.Time) bool {
	return !t.Before(c.ExpiresAt)
}

// SessionPayload is the verified content of a session token.
type SessionPayload struct {
	WalletAddress string
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Nonce         string // nonce of the challenge the session was minted from
	TokenID       string // unique token id, distinguishes replays of one wallet
}

// TokenRequirement is the (token id, amount) pair a path demands for access.
type TokenRequirement struct {
	TokenID uint64 `yaml:"token_id"`
	Amount  uint64 `yaml:"amount"`
}

// ValidationResult classifies one wallet against one token requirement.
// Produced fresh per call, never persisted.
type ValidationResult struct {
	Valid          bool
	WalletAddress  string
	TokenID        uint64
	RequiredAmount uint64
	ActualBalance  *big.Int // nil when the ledger query did not complete
	Code           ErrorKind
	Message        string
	Retryable      bool
}

// Mode selects how a failure is rendered to the caller.
type Mode int

const (
	// ModePage renders failures as redirects to remediation pages.
	ModePage Mode = iota

	// ModeAPI renders failures as structured JSON bodies.
	ModeAPI
)

// RequestContext is the per-request bundle the orchestrator threads through
// its checks. Lifetime is one request.
type RequestContext struct {
	Path        string
	Mode        Mode
	Protected   bool
	Requirement *TokenRequirement
	OperationID string
}

// Result is the terminal outcome of the orchestrator for one request.
type Result struct {
	Authenticated bool
	WalletAddress string
	Code          ErrorKind
	Message       string
}
