package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util"
	"github/chapool/nft-minter/internal/util/command"
)

func TestWithConfig(t *testing.T) {
	ctx := t.Context()

	var testError = errors.New("test error")

	cfg := config.DefaultMinterConfigFromEnv()
	cfg.Logger.PrettyPrintConsole = false
	cfg.Logger.Level = zerolog.WarnLevel

	resultErr := command.WithConfig(ctx, cfg, func(ctx context.Context, got config.Minter) error {
		assert.Equal(t, cfg.Network, got.Network)
		assert.NotEqual(t, zerolog.Disabled, util.LogFromContext(ctx).GetLevel())

		return testError
	})

	assert.Equal(t, testError, resultErr)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestWithMinterConfigMissingFile(t *testing.T) {
	called := false
	err := command.WithMinterConfig(t.Context(), "/nonexistent/minter.toml", func(context.Context, config.Minter) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestNewSubcommandGroup(t *testing.T) {
	first := &cobra.Command{Use: "first", RunE: func(*cobra.Command, []string) error { return nil }}
	second := &cobra.Command{Use: "second", RunE: func(*cobra.Command, []string) error { return nil }}

	group := command.NewSubcommandGroup("things", first, second)

	assert.Equal(t, "things <subcommand>", group.Use)
	assert.Len(t, group.Commands(), 2)
}
