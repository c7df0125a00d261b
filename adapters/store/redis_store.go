package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/ports"
)

// RedisStore is a Redis implementation of the ChallengeStore interface.
// Atomicity of Consume relies on GETDEL, so concurrent consumers of one
// nonce cannot both succeed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a new Redis-backed challenge store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = core.DefaultChallengeTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "tollgate:challenge:",
	}
}

var _ ports.ChallengeStore = (*RedisStore)(nil)

// Generate mints a challenge and stores it with the challenge TTL
func (s *RedisStore) Generate(ctx context.Context) (*core.Challenge, error) {
	challenge, err := core.NewChallenge(s.ttl)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	key := s.prefix + challenge.Nonce
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	return challenge, nil
}

// Consume atomically fetches and deletes a challenge via GETDEL
func (s *RedisStore) Consume(ctx context.Context, nonce string) (*core.Challenge, error) {
	key := s.prefix + nonce

	payload, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}

	var challenge core.Challenge
	if err := json.Unmarshal([]byte(payload), &challenge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	// The key TTL already bounds the entry's lifetime; the explicit check
	// covers clock skew between this process and Redis.
	if challenge.Expired(time.Now()) {
		return nil, nil
	}

	return &challenge, nil
}
