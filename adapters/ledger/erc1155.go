// Package ledger adapts a deployed ERC-1155 contract to the Ledger port.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/ports"
)

const balanceOfABI = `[{"constant":true,"inputs":[{"name":"account","type":"address"},{"name":"id","type":"uint256"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

// ContractCaller is the slice of the eth client the ledger needs.
// *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ERC1155Ledger queries balanceOf(address,uint256) on the access-token
// contract.
type ERC1155Ledger struct {
	caller   ContractCaller
	contract common.Address
	abi      abi.ABI
	timeout  time.Duration
}

// NewERC1155Ledger creates a ledger bound to the given contract. A
// non-positive timeout disables the per-call deadline.
func NewERC1155Ledger(caller ContractCaller, contract common.Address, timeout time.Duration) (*ERC1155Ledger, error) {
	parsed, err := abi.JSON(strings.NewReader(balanceOfABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse balanceOf ABI: %w", err)
	}

	return &ERC1155Ledger{
		caller:   caller,
		contract: contract,
		abi:      parsed,
		timeout:  timeout,
	}, nil
}

var _ ports.Ledger = (*ERC1155Ledger)(nil)

// BalanceOf returns the balance of tokenID held by address
func (l *ERC1155Ledger) BalanceOf(ctx context.Context, address string, tokenID uint64) (*big.Int, error) {
	if !core.ValidAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	data, err := l.abi.Pack("balanceOf", common.HexToAddress(address), new(big.Int).SetUint64(tokenID))
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf call: %w", err)
	}

	out, err := l.caller.CallContract(ctx, ethereum.CallMsg{To: &l.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("balanceOf call failed: %w", err)
	}

	results, err := l.abi.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf result: %w", err)
	}

	balance, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result type %T", results[0])
	}

	return balance, nil
}
