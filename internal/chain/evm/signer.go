package evm

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

type dynamicFeeTx struct {
	ChainID              *big.Int
	Nonce                uint64
	To                   common.Address
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Data                 []byte
}

// signEIP1559Transaction signs a zero-value EIP-1559 contract call.
func signEIP1559Transaction(req dynamicFeeTx, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	to := req.To

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   req.ChainID,
		Nonce:     req.Nonce,
		GasTipCap: req.MaxPriorityFeePerGas,
		GasFeeCap: req.MaxFeePerGas,
		Gas:       req.GasLimit,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      req.Data,
	})

	signedTx, err := types.SignTx(tx, types.NewLondonSigner(req.ChainID), key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signedTx, nil
}
