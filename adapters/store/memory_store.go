package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/ports"
)

// MemoryStore is an in-process implementation of the ChallengeStore interface
type MemoryStore struct {
	challenges map[string]*core.Challenge
	ttl        time.Duration
	now        func() time.Time
	mu         sync.Mutex
}

// NewMemoryStore creates a new in-memory challenge store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = core.DefaultChallengeTTL
	}
	return &MemoryStore{
		challenges: make(map[string]*core.Challenge),
		ttl:        ttl,
		now:        time.Now,
	}
}

var _ ports.ChallengeStore = (*MemoryStore)(nil)

// Generate mints a challenge, stores it, and schedules its removal at expiry
func (s *MemoryStore) Generate(ctx context.Context) (*core.Challenge, error) {
	challenge, err := core.NewChallenge(s.ttl)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.challenges[challenge.Nonce] = challenge
	s.mu.Unlock()

	// Sweep the entry once the TTL elapses. The sweep deliberately does not
	// watch ctx: the caller's request context ends long before the TTL, and
	// the entry must still be removed. Consume may have deleted it already,
	// in which case this is a no-op.
	go func() {
		timer := time.NewTimer(s.ttl)
		defer timer.Stop()
		<-timer.C

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.challenges, challenge.Nonce)
	}()

	return challenge, nil
}

// Consume atomically looks up and deletes a challenge. Absent, expired and
// already-consumed nonces all yield nil.
func (s *MemoryStore) Consume(ctx context.Context, nonce string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, ok := s.challenges[nonce]
	if !ok {
		return nil, nil
	}
	delete(s.challenges, nonce)

	if challenge.Expired(s.now()) {
		return nil, nil
	}

	return challenge, nil
}

// Len returns the number of stored challenges. Useful in tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
