package command

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util"
)

// NewSubcommandGroup returns a command that only groups the given subcommands
// and prints its help when called directly.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <subcommand>", use),
		Short: fmt.Sprintf("%s related subcommands", use),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// WithMinterConfig loads the configuration (optionally from configPath),
// configures the global logger and runs f with a context carrying that logger.
func WithMinterConfig(ctx context.Context, configPath string, f func(ctx context.Context, cfg config.Minter) error) error {
	cfg, err := config.LoadMinterConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	return WithConfig(ctx, cfg, f)
}

// WithConfig configures logging from cfg and invokes f.
func WithConfig(ctx context.Context, cfg config.Minter, f func(ctx context.Context, cfg config.Minter) error) error {
	util.ConfigureLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	logger := util.LogFromContext(ctx).With().
		Str("network", string(cfg.Network)).
		Logger()
	ctx = logger.WithContext(ctx)

	return f(ctx, cfg)
}

// ConfigFlag is the persistent root flag naming an optional config file.
const ConfigFlag = "config"

// ConfigPath returns the value of the --config flag visible to cmd.
func ConfigPath(cmd *cobra.Command) string {
	if f := cmd.Flag(ConfigFlag); f != nil {
		return f.Value.String()
	}

	return ""
}

// PrintJSON writes v as indented JSON to cmd's output.
func PrintJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(v), "failed to encode output")
}
