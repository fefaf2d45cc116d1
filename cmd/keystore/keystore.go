package keystore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/identity"
	"github/chapool/nft-minter/internal/util"
	"github/chapool/nft-minter/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newImport(),
		newAddress(),
		newMnemonic(),
	)
}

func loadHolder(ctx context.Context, cfg config.Minter) (identity.Holder, error) { //nolint:ireturn
	curve, err := identity.CurveFor(cfg.Network)
	if err != nil {
		return nil, err
	}

	holder, err := identity.Load(ctx, cfg.Identity, curve)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load identity")
	}

	return holder, nil
}

func newImport() *cobra.Command {
	var (
		out   string
		light bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Encrypts the configured identity into a keystore file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(ctx context.Context, cfg config.Minter) error {
				holder, err := loadHolder(ctx, cfg)
				if err != nil {
					return err
				}
				defer holder.Clear()

				key, err := holder.Key()
				if err != nil {
					return err
				}

				password, err := identity.PromptNewPassword(identity.PromptPassword)
				if err != nil {
					return err
				}

				params := identity.DefaultScryptParams()
				if light {
					params = identity.LightScryptParams()
				}

				ks, err := identity.EncryptKey(key, password, params)
				if err != nil {
					return err
				}

				if err := identity.WriteKeystoreFile(out, ks); err != nil {
					return err
				}

				util.LogFromContext(ctx).Info().
					Str("component", "keystore_cmd").
					Str("path", out).
					Str("address", ks.Address).
					Msg("Keystore written")

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "keystore.json", "Keystore file to create")
	cmd.Flags().BoolVar(&light, "light", false, "Use light scrypt parameters")

	return cmd
}

func newAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Prints the address of the configured identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(ctx context.Context, cfg config.Minter) error {
				holder, err := loadHolder(ctx, cfg)
				if err != nil {
					return err
				}
				defer holder.Clear()

				address, err := holder.Address()
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), address)

				return nil
			})
		},
	}
}

func newMnemonic() *cobra.Command {
	return &cobra.Command{
		Use:   "mnemonic",
		Short: "Prints a fresh 24 word BIP39 mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mnemonic, err := identity.NewMnemonic()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), mnemonic)

			return nil
		},
	}
}
