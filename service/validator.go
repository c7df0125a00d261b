package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/ports"
)

// TokenValidator classifies a wallet against a token requirement by querying
// the ledger.
type TokenValidator struct {
	ledger ports.Ledger
}

// NewTokenValidator creates a new token validator
func NewTokenValidator(ledger ports.Ledger) *TokenValidator {
	return &TokenValidator{ledger: ledger}
}

// Validate queries the wallet's balance of the required token and classifies
// the outcome three ways: zero balance, positive but insufficient, and
// sufficient. A balance exactly equal to the required amount is sufficient.
// Ledger failures, including timeouts, classify as CONTRACT_ERROR.
func (v *TokenValidator) Validate(ctx context.Context, walletAddress string, req core.TokenRequirement) core.ValidationResult {
	result := core.ValidationResult{
		WalletAddress:  walletAddress,
		TokenID:        req.TokenID,
		RequiredAmount: req.Amount,
		Retryable:      true,
	}

	if !core.ValidAddress(walletAddress) {
		result.Code = core.KindAuthInvalid
		result.Message = "session carries a malformed wallet address"
		return result
	}

	balance, err := v.ledger.BalanceOf(ctx, walletAddress, req.TokenID)
	if err != nil {
		if errors.Is(err, ports.ErrHoldingLapsed) {
			result.Code = core.KindTokenExpired
			result.Message = core.KindTokenExpired.DefaultMessage()
			return result
		}
		result.Code = core.KindContractError
		result.Message = fmt.Sprintf("ledger query failed: %v", err)
		return result
	}

	result.ActualBalance = balance
	required := new(big.Int).SetUint64(req.Amount)

	switch {
	case balance.Sign() == 0:
		result.Code = core.KindTokenMissing
		result.Message = fmt.Sprintf("wallet holds none of token %d (requires %d)", req.TokenID, req.Amount)
	case balance.Cmp(required) < 0:
		result.Code = core.KindTokenInsufficient
		result.Message = fmt.Sprintf("wallet holds %s of token %d (requires %d)", balance, req.TokenID, req.Amount)
	default:
		result.Valid = true
		result.Retryable = false
	}

	return result
}
