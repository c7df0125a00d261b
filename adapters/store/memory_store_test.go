package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConsumeOnce(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	challenge, err := s.Generate(ctx)
	require.NoError(t, err)
	require.NotNil(t, challenge)
	assert.NotEmpty(t, challenge.Nonce)
	assert.Contains(t, challenge.Message, challenge.Nonce)
	assert.True(t, challenge.ExpiresAt.After(challenge.IssuedAt))

	got, err := s.Consume(ctx, challenge.Nonce)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, challenge.Nonce, got.Nonce)

	// Second consume of the same nonce must observe nothing.
	got, err = s.Consume(ctx, challenge.Nonce)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreUnknownNonce(t *testing.T) {
	s := NewMemoryStore(time.Minute)

	got, err := s.Consume(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiredChallenge(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	challenge, err := s.Generate(ctx)
	require.NoError(t, err)

	// Move the store's clock past the expiry.
	s.now = func() time.Time { return challenge.ExpiresAt }

	got, err := s.Consume(ctx, challenge.Nonce)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreConcurrentConsume(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	challenge, err := s.Generate(ctx)
	require.NoError(t, err)

	const workers = 32

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)

	start := make(chan struct{})
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			got, err := s.Consume(ctx, challenge.Nonce)
			assert.NoError(t, err)
			if got != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one concurrent consumer may win")
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)

	_, err := s.Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestMemoryStoreSweepOutlivesCaller(t *testing.T) {
	s := NewMemoryStore(10 * time.Millisecond)

	// The HTTP handler's request context is canceled as soon as the
	// response is written. The scheduled removal must still happen.
	ctx, cancel := context.WithCancel(context.Background())
	_, err := s.Generate(ctx)
	require.NoError(t, err)
	cancel()

	require.Equal(t, 1, s.Len())
	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}
