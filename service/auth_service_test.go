package service

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/tollgate/adapters/store"
	"github.com/layer-3/tollgate/adapters/tokenizer"
	"github.com/layer-3/tollgate/core"
)

type recordingPublisher struct {
	mu      sync.Mutex
	logins  []string
	logouts []string
	denied  []string
}

func (p *recordingPublisher) PublishLogin(_ context.Context, address, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, address)
	return nil
}

func (p *recordingPublisher) PublishLogout(_ context.Context, address, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logouts = append(p.logouts, address)
	return nil
}

func (p *recordingPublisher) PublishDenied(_ context.Context, address, _ string, _ core.ErrorKind) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.denied = append(p.denied, address)
	return nil
}

type wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey).Hex()}
}

func (w wallet) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	require.NoError(t, err)
	sig[64] += 27
	return hexutil.Encode(sig)
}

func newAuthService(t *testing.T) (*AuthService, *recordingPublisher) {
	t.Helper()

	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	events := &recordingPublisher{}
	svc := NewAuthService(
		store.NewMemoryStore(time.Minute),
		tokenizer.NewJWTTokenizer(signKey, time.Hour),
		events,
	)
	return svc, events
}

func TestLoginFlow(t *testing.T) {
	svc, events := newAuthService(t)
	w := newWallet(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	token, payload, err := svc.Login(ctx, challenge.Nonce, w.sign(t, challenge.Message), w.address)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, w.address, payload.WalletAddress)
	assert.Equal(t, challenge.Nonce, payload.Nonce)
	assert.Equal(t, []string{w.address}, events.logins)
}

func TestLoginSpendsChallenge(t *testing.T) {
	svc, _ := newAuthService(t)
	w := newWallet(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)
	signature := w.sign(t, challenge.Message)

	_, _, err = svc.Login(ctx, challenge.Nonce, signature, w.address)
	require.NoError(t, err)

	// Replaying the same challenge and signature must fail.
	_, _, err = svc.Login(ctx, challenge.Nonce, signature, w.address)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestLoginFailedSignatureStillSpendsChallenge(t *testing.T) {
	svc, _ := newAuthService(t)
	w := newWallet(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, challenge.Nonce, w.sign(t, "a different message"), w.address)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)

	// The failed attempt consumed the challenge.
	_, _, err = svc.Login(ctx, challenge.Nonce, w.sign(t, challenge.Message), w.address)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestLoginWrongWallet(t *testing.T) {
	svc, _ := newAuthService(t)
	signer := newWallet(t)
	impostor := newWallet(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, challenge.Nonce, signer.sign(t, challenge.Message), impostor.address)
	assert.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestLoginUnknownNonce(t *testing.T) {
	svc, _ := newAuthService(t)
	w := newWallet(t)

	_, _, err := svc.Login(context.Background(), "no-such-nonce", w.sign(t, "whatever"), w.address)
	assert.ErrorIs(t, err, core.ErrInvalidChallenge)
}

func TestLoginMalformedAddress(t *testing.T) {
	svc, _ := newAuthService(t)

	_, _, err := svc.Login(context.Background(), "nonce", "0xsig", "not-an-address")
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestLogout(t *testing.T) {
	svc, events := newAuthService(t)
	w := newWallet(t)
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx)
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, challenge.Nonce, w.sign(t, challenge.Message), w.address)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))
	assert.Equal(t, []string{w.address}, events.logouts)

	// Logout with garbage is a no-op, not an error.
	require.NoError(t, svc.Logout(ctx, "garbage"))
	assert.Len(t, events.logouts, 1)
}
