package ports

import (
	"context"
	"errors"
	"math/big"
)

// ErrHoldingLapsed is returned by a Ledger when the wallet's holding of the
// token was valid once but has since lapsed.
var ErrHoldingLapsed = errors.New("token holding has lapsed")

// Ledger queries on-chain balances of the access token.
type Ledger interface {
	// BalanceOf returns the balance of tokenID held by address. The call
	// honors ctx cancellation; a timeout is reported as an ordinary error.
	BalanceOf(ctx context.Context, address string, tokenID uint64) (*big.Int, error)
}
