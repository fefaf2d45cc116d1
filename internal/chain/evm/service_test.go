package evm_test

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/chain/evm"
	"github/chapool/nft-minter/internal/minter"
)

const chainID = 97

type fakeBackend struct {
	mu sync.Mutex

	chainID     int64
	nonce       uint64
	sent        []*types.Transaction
	pendingPoll int
	// receipt builds the receipt for a sent transaction.
	receipt func(tx *types.Transaction) *types.Receipt
	polls   int
}

func (f *fakeBackend) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: big.NewInt(3_000_000_000)}, nil
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, tx)
	f.nonce++

	return nil
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.polls++
	if f.polls <= f.pendingPoll {
		return nil, errors.Wrap(ethereum.NotFound, "failed to get transaction receipt")
	}

	for _, tx := range f.sent {
		if tx.Hash() == hash {
			return f.receipt(tx), nil
		}
	}

	return nil, ethereum.NotFound
}

func mintReceipt(tokenID int64) func(tx *types.Transaction) *types.Receipt {
	return func(tx *types.Transaction) *types.Receipt {
		args, err := evm.ERC721ABI.Methods["safeMint"].Inputs.Unpack(tx.Data()[4:])
		if err != nil {
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(101)}
		}
		to, _ := args[0].(common.Address)

		return &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(101),
			TxHash:      tx.Hash(),
			Logs: []*types.Log{{
				Address: *tx.To(),
				Topics: []common.Hash{
					evm.ERC721ABI.Events["Transfer"].ID,
					common.BytesToHash(common.Address{}.Bytes()),
					common.BytesToHash(to.Bytes()),
					common.BigToHash(big.NewInt(tokenID)),
				},
			}},
		}
	}
}

func newService(t *testing.T, backend *fakeBackend) (*evm.Service, common.Address) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	svc, err := evm.NewService(t.Context(), backend, key, evm.Options{
		ChainID:        chainID,
		ConfirmTimeout: 200 * time.Millisecond,
		PollInterval:   time.Millisecond,
		ExplorerURL:    "https://testnet.bscscan.com",
	})
	require.NoError(t, err)

	return svc, crypto.PubkeyToAddress(key.PublicKey)
}

func TestCreateMintsAndReadsTokenID(t *testing.T) {
	backend := &fakeBackend{chainID: chainID, receipt: mintReceipt(7), pendingPoll: 2}
	svc, from := newService(t, backend)

	contract := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	asset, conf, err := svc.Create(t.Context(), minter.MintRequest{
		MetadataURI: "ipfs://meta/1.json",
		Collection:  contract.Hex(),
	})
	require.NoError(t, err)
	assert.False(t, conf.Failed())
	assert.Equal(t, contract.Hex()+"/7", asset.Address)
	assert.Equal(t, 3, backend.polls)

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, types.DynamicFeeTxType, int(tx.Type()))
	assert.Equal(t, uint64(120_000), tx.Gas())
	assert.Equal(t, big.NewInt(7_000_000_000), tx.GasFeeCap())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(chainID)), tx)
	require.NoError(t, err)
	assert.Equal(t, from, sender)
	assert.Equal(t, from.Hex(), svc.Authority())

	args, err := evm.ERC721ABI.Methods["safeMint"].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, from, args[0])
	assert.Equal(t, "ipfs://meta/1.json", args[1])
}

func TestCreateRevertedIsFailedConfirmation(t *testing.T) {
	backend := &fakeBackend{chainID: chainID, receipt: func(tx *types.Transaction) *types.Receipt {
		return &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(5), TxHash: tx.Hash()}
	}}
	svc, _ := newService(t, backend)

	_, conf, err := svc.Create(t.Context(), minter.MintRequest{
		MetadataURI: "ipfs://meta/1.json",
		Collection:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	})
	require.NoError(t, err)
	require.True(t, conf.Failed())
	assert.True(t, errors.Is(conf.Err, evm.ErrTransactionReverted))
}

func TestCreateTimeout(t *testing.T) {
	backend := &fakeBackend{chainID: chainID, receipt: mintReceipt(1), pendingPoll: 1 << 30}
	svc, _ := newService(t, backend)

	_, conf, err := svc.Create(t.Context(), minter.MintRequest{
		MetadataURI: "ipfs://meta/1.json",
		Collection:  "0x5FbDB2315678afecb367f032d93F642f64180aa3",
	})
	require.NoError(t, err)
	assert.True(t, errors.Is(conf.Err, evm.ErrConfirmationTimeout))
}

func TestCreateRejectsProgrammableAndBadCollection(t *testing.T) {
	backend := &fakeBackend{chainID: chainID, receipt: mintReceipt(1)}
	svc, _ := newService(t, backend)

	_, _, err := svc.Create(t.Context(), minter.MintRequest{Collection: "0x5FbDB2315678afecb367f032d93F642f64180aa3", Programmable: true})
	assert.True(t, errors.Is(err, evm.ErrProgrammableUnsupported))

	_, _, err = svc.Create(t.Context(), minter.MintRequest{Collection: "E1sRPdRpcxAcjQCRUKnkMV4jkZRVWeDLbT2TnDSyCyhz"})
	assert.Error(t, err)

	assert.Empty(t, backend.sent)
}

func TestTransfer(t *testing.T) {
	backend := &fakeBackend{chainID: chainID, receipt: func(tx *types.Transaction) *types.Receipt {
		return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(9), TxHash: tx.Hash()}
	}}
	svc, from := newService(t, backend)

	dest := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	conf, err := svc.Transfer(t.Context(), minter.TransferRequest{
		Asset:       "0x5FbDB2315678afecb367f032d93F642f64180aa3/42",
		Source:      from.Hex(),
		Destination: dest.Hex(),
	})
	require.NoError(t, err)
	assert.False(t, conf.Failed())

	require.Len(t, backend.sent, 1)
	tx := backend.sent[0]
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), *tx.To())

	args, err := evm.ERC721ABI.Methods["safeTransferFrom"].Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, from, args[0])
	assert.Equal(t, dest, args[1])
	assert.Equal(t, big.NewInt(42), args[2])
}

func TestTransferRejectsForeignSource(t *testing.T) {
	backend := &fakeBackend{chainID: chainID}
	svc, _ := newService(t, backend)

	_, err := svc.Transfer(t.Context(), minter.TransferRequest{
		Asset:       "0x5FbDB2315678afecb367f032d93F642f64180aa3/42",
		Source:      "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Destination: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	})
	assert.True(t, errors.Is(err, evm.ErrSourceNotAuthority))
}

func TestNewServiceChainIDMismatch(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	_, err = evm.NewService(t.Context(), &fakeBackend{chainID: 1}, key, evm.Options{ChainID: chainID})
	assert.True(t, errors.Is(err, evm.ErrChainIDMismatch))
}

func TestParseAsset(t *testing.T) {
	contract, id, err := evm.ParseAsset("0x5FbDB2315678afecb367f032d93F642f64180aa3/123")
	require.NoError(t, err)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", contract.Hex())
	assert.Equal(t, big.NewInt(123), id)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3/123", evm.FormatAsset(contract, id))

	for _, bad := range []string{"", "0x5FbDB2315678afecb367f032d93F642f64180aa3", "nothex/1", "0x5FbDB2315678afecb367f032d93F642f64180aa3/-1", "0x5FbDB2315678afecb367f032d93F642f64180aa3/abc"} {
		_, _, err := evm.ParseAsset(bad)
		assert.True(t, errors.Is(err, evm.ErrInvalidAsset), bad)
	}
}
