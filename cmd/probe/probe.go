package probe

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/chain"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util/command"
)

const (
	verboseFlag string = "verbose"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newReadiness(),
	)
}

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Checks that the configured network RPC answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool(verboseFlag)

			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(ctx context.Context, cfg config.Minter) error {
				result, err := chain.Probe(ctx, cfg)
				if err != nil {
					return err
				}

				if verbose {
					fmt.Fprintf(cmd.OutOrStdout(), "%s ready: %s\n", result.Network, result.Detail)
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Print the probe detail")

	return cmd
}
