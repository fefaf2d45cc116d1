package collection

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/chain"
	"github/chapool/nft-minter/internal/chain/solana"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/identity"
	"github/chapool/nft-minter/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("collection",
		newCreate(),
	)
}

type created struct {
	Mint      string `json:"mint"`
	Signature string `json:"signature"`
}

func newCreate() *cobra.Command {
	var req solana.CollectionRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Mints a collection NFT owned by the configured identity (solana)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(ctx context.Context, cfg config.Minter) error {
				if cfg.Network != config.NetworkSolana {
					return errors.Errorf("collection create needs network solana, got %q", cfg.Network)
				}

				holder, err := identity.Load(ctx, cfg.Identity, identity.CurveEd25519)
				if err != nil {
					return errors.Wrap(err, "failed to load identity")
				}
				defer holder.Clear()

				svc, err := chain.NewSolana(cfg, holder)
				if err != nil {
					return err
				}

				asset, conf, err := svc.CreateCollection(ctx, req)
				if err != nil {
					return err
				}
				if conf.Failed() {
					return errors.Wrapf(conf.Err, "collection mint %s not confirmed", conf.Signature)
				}

				return command.PrintJSON(cmd, created{Mint: asset.Address, Signature: conf.Signature})
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Collection name")
	cmd.Flags().StringVar(&req.Symbol, "symbol", "", "Collection symbol")
	cmd.Flags().StringVar(&req.URI, "uri", "", "Collection metadata URI")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("uri")

	return cmd
}
