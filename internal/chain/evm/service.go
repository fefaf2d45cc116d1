package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
)

var (
	ErrConfirmationTimeout     = errors.New("transaction not mined before timeout")
	ErrTransactionReverted     = errors.New("transaction reverted")
	ErrProgrammableUnsupported = errors.New("programmable tokens are not supported on evm networks")
	ErrSourceNotAuthority      = errors.New("transfer source must be the signing authority")
	ErrChainIDMismatch         = errors.New("rpc chain id does not match configuration")
)

const (
	// gas estimate headroom in percent
	gasHeadroomPercent = 120
	baseFeeMultiplier  = 2
)

type Options struct {
	ChainID        int64
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	ExplorerURL    string
}

// Service mints ERC-721 tokens on the collection contract and transfers them
// with safeTransferFrom. The signing key must be allowed to mint.
type Service struct {
	backend Backend
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	opts    Options
}

var _ minter.TokenService = (*Service)(nil)

// NewService checks that the backend serves the configured chain.
func NewService(ctx context.Context, backend Backend, key *ecdsa.PrivateKey, opts Options) (*Service, error) {
	if backend == nil {
		return nil, errors.New("evm backend is required")
	}
	if key == nil {
		return nil, errors.New("evm signing key is required")
	}

	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 90 * time.Second //nolint:mnd
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second //nolint:mnd
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}
	if opts.ChainID != 0 && chainID.Int64() != opts.ChainID {
		return nil, errors.Wrapf(ErrChainIDMismatch, "rpc reports %s, configured %d", chainID, opts.ChainID)
	}

	return &Service{
		backend: backend,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
		opts:    opts,
	}, nil
}

// Authority returns the checksummed signer address.
func (s *Service) Authority() string {
	return s.from.Hex()
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	l := util.LogFromContext(ctx).With().Str("component", "evm_token_service").Logger()

	return &l
}

func (s *Service) txLink(hash string) string {
	if s.opts.ExplorerURL == "" {
		return ""
	}

	return fmt.Sprintf("%s/tx/%s", strings.TrimRight(s.opts.ExplorerURL, "/"), hash)
}

// Create calls safeMint(authority, uri) on req.Collection. Royalties and
// creators are set on the contract, not per token.
func (s *Service) Create(ctx context.Context, req minter.MintRequest) (minter.MintedAsset, minter.Confirmation, error) {
	if req.Programmable {
		return minter.MintedAsset{}, minter.Confirmation{}, ErrProgrammableUnsupported
	}
	if !common.IsHexAddress(req.Collection) {
		return minter.MintedAsset{}, minter.Confirmation{}, errors.Errorf("invalid collection contract %q", req.Collection)
	}

	contract := common.HexToAddress(req.Collection)

	data, err := packSafeMint(s.from, req.MetadataURI)
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, err
	}

	receipt, conf, err := s.sendAndWait(ctx, contract, data)
	if err != nil || conf.Failed() {
		return minter.MintedAsset{}, conf, err
	}

	tokenID, err := mintedTokenID(receipt, contract, s.from)
	if err != nil {
		return minter.MintedAsset{}, conf, errors.Wrapf(err, "tx %s", conf.Signature)
	}

	asset := minter.MintedAsset{Address: FormatAsset(contract, tokenID)}

	s.logger(ctx).Info().
		Int("item", req.Index).
		Str("asset", asset.Address).
		Str("tx", s.txLink(conf.Signature)).
		Msg("Mint confirmed")

	return asset, conf, nil
}

// Transfer calls safeTransferFrom(authority, destination, tokenId).
func (s *Service) Transfer(ctx context.Context, req minter.TransferRequest) (minter.Confirmation, error) {
	if req.Programmable {
		return minter.Confirmation{}, ErrProgrammableUnsupported
	}

	contract, tokenID, err := ParseAsset(req.Asset)
	if err != nil {
		return minter.Confirmation{}, err
	}
	if !common.IsHexAddress(req.Destination) {
		return minter.Confirmation{}, errors.Errorf("invalid destination address %q", req.Destination)
	}
	if src := strings.TrimSpace(req.Source); src != "" && common.HexToAddress(src) != s.from {
		return minter.Confirmation{}, errors.Wrapf(ErrSourceNotAuthority, "source %s", src)
	}

	data, err := packSafeTransferFrom(s.from, common.HexToAddress(req.Destination), tokenID)
	if err != nil {
		return minter.Confirmation{}, err
	}

	_, conf, err := s.sendAndWait(ctx, contract, data)
	if err != nil {
		return conf, err
	}

	s.logger(ctx).Info().
		Str("asset", req.Asset).
		Str("destination", req.Destination).
		Str("tx", s.txLink(conf.Signature)).
		Bool("confirmed", !conf.Failed()).
		Msg("Transfer finished")

	return conf, nil
}

func (s *Service) sendAndWait(ctx context.Context, to common.Address, data []byte) (*types.Receipt, minter.Confirmation, error) {
	tx, err := s.buildTransaction(ctx, to, data)
	if err != nil {
		return nil, minter.Confirmation{}, err
	}

	if err := s.backend.SendTransaction(ctx, tx); err != nil {
		return nil, minter.Confirmation{}, errors.Wrap(err, "failed to send transaction")
	}

	return s.waitForReceipt(ctx, tx.Hash())
}

func (s *Service) buildTransaction(ctx context.Context, to common.Address, data []byte) (*types.Transaction, error) {
	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pending nonce")
	}

	tip, err := s.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to suggest gas tip cap")
	}

	head, err := s.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest header")
	}

	feeCap := new(big.Int).Set(tip)
	if head.BaseFee != nil {
		feeCap.Add(feeCap, new(big.Int).Mul(head.BaseFee, big.NewInt(baseFeeMultiplier)))
	}

	gas, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &to, Data: data})
	if err != nil {
		return nil, errors.Wrap(err, "failed to estimate gas")
	}

	return signEIP1559Transaction(dynamicFeeTx{
		ChainID:              s.chainID,
		Nonce:                nonce,
		To:                   to,
		GasLimit:             gas * gasHeadroomPercent / 100, //nolint:mnd
		MaxFeePerGas:         feeCap,
		MaxPriorityFeePerGas: tip,
		Data:                 data,
	}, s.key)
}

func (s *Service) waitForReceipt(parent context.Context, hash common.Hash) (*types.Receipt, minter.Confirmation, error) {
	sig := hash.Hex()

	ctx, cancel := context.WithTimeout(parent, s.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		receipt, err := s.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, minter.Confirmation{
					Signature: sig,
					Err:       errors.Wrapf(ErrTransactionReverted, "tx %s in block %s", sig, receipt.BlockNumber),
				}, nil
			}
			return receipt, minter.Confirmation{Signature: sig}, nil
		case err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil:
			s.logger(parent).Debug().Err(err).Str("tx", sig).Msg("Receipt lookup failed, polling again")
		}

		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return nil, minter.Confirmation{Signature: sig}, errors.Wrap(err, "confirmation wait interrupted")
			}
			return nil, minter.Confirmation{
				Signature: sig,
				Err:       errors.Wrapf(ErrConfirmationTimeout, "after %s", s.opts.ConfirmTimeout),
			}, nil
		case <-ticker.C:
		}
	}
}
