package env

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Prints the effective configuration as JSON with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithMinterConfig(cmd.Context(), command.ConfigPath(cmd), func(_ context.Context, cfg config.Minter) error {
				return command.PrintJSON(cmd, cfg.Redacted())
			})
		},
	}
}
