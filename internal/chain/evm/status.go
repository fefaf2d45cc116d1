package evm

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// ReceiptReader is the part of Backend needed to inspect a mined transaction.
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxStatus summarizes the receipt of a transaction hash.
type TxStatus struct {
	Hash        string `json:"hash"`
	Found       bool   `json:"found"`
	Success     bool   `json:"success"`
	BlockNumber uint64 `json:"blockNumber,omitempty"`
	GasUsed     uint64 `json:"gasUsed,omitempty"`
	Explorer    string `json:"explorer,omitempty"`
}

// LookupTransaction reads the receipt of hash. A transaction that is unknown
// or still pending is reported as not found.
func LookupTransaction(ctx context.Context, reader ReceiptReader, explorerURL string, hash string) (TxStatus, error) {
	hash = strings.TrimSpace(hash)
	if len(hash) != 66 || !strings.HasPrefix(hash, "0x") { //nolint:mnd // 0x + 32 bytes hex
		return TxStatus{}, errors.Errorf("invalid transaction hash %q", hash)
	}

	txHash := common.HexToHash(hash)
	out := TxStatus{Hash: txHash.Hex()}
	if explorerURL != "" {
		out.Explorer = strings.TrimRight(explorerURL, "/") + "/tx/" + out.Hash
	}

	receipt, err := reader.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return out, nil
	}
	if err != nil {
		return TxStatus{}, errors.Wrap(err, "failed to get transaction receipt")
	}

	out.Found = true
	out.Success = receipt.Status == types.ReceiptStatusSuccessful
	out.GasUsed = receipt.GasUsed
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}

	return out, nil
}
