package tx

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/chain/evm"
	"github/chapool/nft-minter/internal/chain/solana"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("tx",
		newStatus(),
	)
}

func newStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status <signature>",
		Short: "Prints what the network knows about a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(ctx context.Context, cfg config.Minter) error {
				status, err := lookup(ctx, cfg, args[0])
				if err != nil {
					return err
				}

				return command.PrintJSON(cmd, status)
			})
		},
	}
}

func lookup(ctx context.Context, cfg config.Minter, signature string) (any, error) {
	switch cfg.Network {
	case config.NetworkSolana:
		rpcClient := solana.NewRPC(cfg.Solana, solana.SessionHash(cfg.Solana))
		return solana.LookupTransaction(ctx, rpcClient, solana.Explorer{Cluster: cfg.Solana.Cluster}, signature)
	case config.NetworkEVM:
		rpcClient, err := evm.NewRPCClient(cfg.EVM.RPCURLs)
		if err != nil {
			return nil, err
		}
		defer rpcClient.Close()

		return evm.LookupTransaction(ctx, rpcClient, cfg.EVM.ExplorerURL, signature)
	default:
		return nil, errors.Errorf("transaction status is not available for network %q", cfg.Network)
	}
}
