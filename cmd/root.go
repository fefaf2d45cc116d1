package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/nft-minter/cmd/collection"
	"github/chapool/nft-minter/cmd/env"
	"github/chapool/nft-minter/cmd/keystore"
	"github/chapool/nft-minter/cmd/mint"
	"github/chapool/nft-minter/cmd/probe"
	"github/chapool/nft-minter/cmd/tx"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util/command"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "minter",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

Mints NFTs under their collections and hands each one to a recipient.
Configured through MINTER_* environment variables, a .env file or --config.`, config.ModuleName),
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.PersistentFlags().String(command.ConfigFlag, "", "Optional config file (toml, yaml or json)")

	// attach the subcommands
	rootCmd.AddCommand(
		collection.New(),
		env.New(),
		keystore.New(),
		mint.New(),
		probe.New(),
		tx.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
