package ports

import "github.com/layer-3/tollgate/core"

// Tokenizer issues and verifies signed session tokens binding a wallet
// address to a time window.
type Tokenizer interface {
	// Issue mints a session token for the wallet. The nonce of the consumed
	// challenge may be passed through as a claim; empty omits it. Fails with
	// core.ErrInvalidAddress when the address is malformed.
	Issue(walletAddress, nonce string) (string, error)

	// Verify parses and validates a session token. Signature failure,
	// expiry and missing claims are all reported as errors.
	Verify(token string) (*core.SessionPayload, error)
}
