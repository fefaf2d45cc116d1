// Package chain builds the token service for the configured network.
package chain

import (
	"context"

	"github.com/blocto/solana-go-sdk/rpc"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/chain/evm"
	hederachain "github/chapool/nft-minter/internal/chain/hedera"
	"github/chapool/nft-minter/internal/chain/solana"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/identity"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
)

// Backend is a ready token service plus the address that signs for it.
type Backend struct {
	Tokens    minter.TokenService
	Authority string

	closers []func()
}

// Close releases network clients held by the backend.
func (b *Backend) Close() {
	for _, c := range b.closers {
		c()
	}
	b.closers = nil
}

// New connects to the configured network with the key held by holder.
func New(ctx context.Context, cfg config.Minter, holder identity.Holder) (*Backend, error) {
	log := util.LogFromContext(ctx).With().Str("component", "chain").Str("network", string(cfg.Network)).Logger()

	var (
		backend *Backend
		err     error
	)

	switch cfg.Network {
	case config.NetworkSolana:
		var svc *solana.Service
		svc, err = NewSolana(cfg, holder)
		if err == nil {
			backend = &Backend{Tokens: svc, Authority: svc.Authority()}
		}
	case config.NetworkEVM:
		backend, err = newEVM(ctx, cfg, holder)
	case config.NetworkHedera:
		backend, err = newHedera(cfg, holder)
	default:
		err = errors.Errorf("unsupported network %q", cfg.Network)
	}
	if err != nil {
		return nil, err
	}

	log.Debug().Str("authority", backend.Authority).Msg("Token service ready")

	return backend, nil
}

// NewSolana returns the concrete Solana service, which also serves collection
// creation and transaction status lookups.
func NewSolana(cfg config.Minter, holder identity.Holder) (*solana.Service, error) {
	key, err := holder.Key()
	if err != nil {
		return nil, err
	}

	account, err := key.SolanaAccount()
	if err != nil {
		return nil, err
	}

	rpcClient := solana.NewRPC(cfg.Solana, solana.SessionHash(cfg.Solana))

	return solana.NewService(rpcClient, account, solana.Options{
		Commitment:     rpc.Commitment(cfg.Solana.Commitment),
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
		Explorer:       solana.Explorer{Cluster: cfg.Solana.Cluster},
	})
}

func newEVM(ctx context.Context, cfg config.Minter, holder identity.Holder) (*Backend, error) {
	key, err := holder.Key()
	if err != nil {
		return nil, err
	}

	privateKey, err := key.ECDSA()
	if err != nil {
		return nil, err
	}

	rpcClient, err := evm.NewRPCClient(cfg.EVM.RPCURLs)
	if err != nil {
		return nil, err
	}

	svc, err := evm.NewService(ctx, rpcClient, privateKey, evm.Options{
		ChainID:        cfg.EVM.ChainID,
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
		ExplorerURL:    cfg.EVM.ExplorerURL,
	})
	if err != nil {
		rpcClient.Close()
		return nil, err
	}

	return &Backend{Tokens: svc, Authority: svc.Authority(), closers: []func(){rpcClient.Close}}, nil
}

func newHedera(cfg config.Minter, holder identity.Holder) (*Backend, error) {
	key, err := holder.Key()
	if err != nil {
		return nil, err
	}
	if key.Curve != identity.CurveSecp256k1 {
		return nil, errors.Wrapf(identity.ErrUnsupportedCurve, "hedera operator needs secp256k1, got %s", key.Curve)
	}

	operatorKey, err := hedera.PrivateKeyFromBytesECDSA(key.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse operator key")
	}

	client, operatorID, err := hederachain.NewClient(cfg.Hedera.Network, cfg.Hedera.OperatorAccountID, operatorKey)
	if err != nil {
		return nil, err
	}

	svc, err := hederachain.NewService(hederachain.NewExecutor(client), operatorID)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Backend{
		Tokens:    svc,
		Authority: svc.Authority(),
		closers:   []func(){func() { _ = client.Close() }},
	}, nil
}
