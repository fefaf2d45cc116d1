package chain

import (
	"context"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/chain/evm"
	hederachain "github/chapool/nft-minter/internal/chain/hedera"
	"github/chapool/nft-minter/internal/chain/solana"
	"github/chapool/nft-minter/internal/config"
)

// ProbeResult describes a successful readiness check.
type ProbeResult struct {
	Network string `json:"network"`
	Detail  string `json:"detail"`
}

// Probe checks that the configured network endpoint answers. It needs no
// signing key.
func Probe(ctx context.Context, cfg config.Minter) (ProbeResult, error) {
	out := ProbeResult{Network: string(cfg.Network)}

	switch cfg.Network {
	case config.NetworkSolana:
		rpcClient := solana.NewRPC(cfg.Solana, solana.SessionHash(cfg.Solana))
		blockhash, err := rpcClient.GetLatestBlockhash(ctx)
		if err != nil {
			return out, errors.Wrapf(err, "solana rpc %s is not ready", cfg.Solana.RPCURL)
		}
		out.Detail = "latest blockhash " + blockhash.Blockhash
	case config.NetworkEVM:
		rpcClient, err := evm.NewRPCClient(cfg.EVM.RPCURLs)
		if err != nil {
			return out, err
		}
		defer rpcClient.Close()

		chainID, err := rpcClient.ChainID(ctx)
		if err != nil {
			return out, errors.Wrap(err, "evm rpc is not ready")
		}
		if chainID.Int64() != cfg.EVM.ChainID {
			return out, errors.Wrapf(evm.ErrChainIDMismatch, "rpc reports %s, configured %d", chainID, cfg.EVM.ChainID)
		}
		out.Detail = "chain id " + chainID.String()
	case config.NetworkHedera:
		network, err := hederachain.NormalizeNetwork(cfg.Hedera.Network)
		if err != nil {
			return out, err
		}
		accountID, err := hedera.AccountIDFromString(cfg.Hedera.OperatorAccountID)
		if err != nil {
			return out, errors.Wrap(err, "invalid operator account ID")
		}
		client, err := hedera.ClientForName(network)
		if err != nil {
			return out, errors.Wrap(err, "failed to create hedera client")
		}
		defer client.Close()

		balance, err := hedera.NewAccountBalanceQuery().SetAccountID(accountID).Execute(client)
		if err != nil {
			return out, errors.Wrapf(err, "hedera %s is not ready", network)
		}
		out.Detail = "operator balance " + balance.Hbars.String()
	default:
		return out, errors.Errorf("unsupported network %q", cfg.Network)
	}

	return out, nil
}
