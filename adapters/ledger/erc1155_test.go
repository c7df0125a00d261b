package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/tollgate/core"
)

type callerFunc func(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)

func (f callerFunc) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return f(ctx, call, blockNumber)
}

const holder = "0x2222222222222222222222222222222222222222"

var contract = common.HexToAddress("0x3333333333333333333333333333333333333333")

func TestBalanceOf(t *testing.T) {
	var captured ethereum.CallMsg

	caller := callerFunc(func(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
		captured = call
		return common.BigToHash(big.NewInt(42)).Bytes(), nil
	})

	l, err := NewERC1155Ledger(caller, contract, 0)
	require.NoError(t, err)

	balance, err := l.BalanceOf(context.Background(), holder, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())

	require.NotNil(t, captured.To)
	assert.Equal(t, contract, *captured.To)
	// selector for balanceOf(address,uint256)
	assert.Equal(t, []byte{0x00, 0xfd, 0xd5, 0x8e}, captured.Data[:4])
}

func TestBalanceOfCallError(t *testing.T) {
	caller := callerFunc(func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		return nil, errors.New("rpc unreachable")
	})

	l, err := NewERC1155Ledger(caller, contract, 0)
	require.NoError(t, err)

	_, err = l.BalanceOf(context.Background(), holder, 0)
	assert.Error(t, err)
}

func TestBalanceOfMalformedAddress(t *testing.T) {
	l, err := NewERC1155Ledger(callerFunc(func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
		t.Fatal("caller must not be reached for a malformed address")
		return nil, nil
	}), contract, 0)
	require.NoError(t, err)

	_, err = l.BalanceOf(context.Background(), "not-an-address", 0)
	assert.ErrorIs(t, err, core.ErrInvalidAddress)
}

func TestBalanceOfTimeout(t *testing.T) {
	caller := callerFunc(func(ctx context.Context, _ ethereum.CallMsg, _ *big.Int) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	l, err := NewERC1155Ledger(caller, contract, 10*time.Millisecond)
	require.NoError(t, err)

	_, err = l.BalanceOf(context.Background(), holder, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
