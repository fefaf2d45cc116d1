package evm_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/chain/evm"
)

type receiptReader map[common.Hash]*types.Receipt

func (r receiptReader) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, ok := r[hash]
	if !ok {
		return nil, ethereum.NotFound
	}

	return receipt, nil
}

func TestLookupTransaction(t *testing.T) {
	mined := common.HexToHash("0x01")
	reverted := common.HexToHash("0x02")
	reader := receiptReader{
		mined:    {Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(77), GasUsed: 21000},
		reverted: {Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(78)},
	}

	status, err := evm.LookupTransaction(t.Context(), reader, "https://testnet.bscscan.com/", mined.Hex())
	require.NoError(t, err)
	assert.True(t, status.Found)
	assert.True(t, status.Success)
	assert.Equal(t, uint64(77), status.BlockNumber)
	assert.Equal(t, uint64(21000), status.GasUsed)
	assert.Equal(t, "https://testnet.bscscan.com/tx/"+mined.Hex(), status.Explorer)

	status, err = evm.LookupTransaction(t.Context(), reader, "", reverted.Hex())
	require.NoError(t, err)
	assert.True(t, status.Found)
	assert.False(t, status.Success)
	assert.Empty(t, status.Explorer)

	status, err = evm.LookupTransaction(t.Context(), reader, "", common.HexToHash("0x03").Hex())
	require.NoError(t, err)
	assert.False(t, status.Found)

	_, err = evm.LookupTransaction(t.Context(), reader, "", "0x1234")
	require.Error(t, err)
}
