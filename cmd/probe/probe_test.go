package probe_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/cmd/probe"
)

func TestReadinessFailsOnUnreachableRPC(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "solana")
	t.Setenv("MINTER_SOLANA_RPC_URL", "http://127.0.0.1:1")

	cmd := probe.New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"readiness", "-v"})

	require.ErrorContains(t, cmd.ExecuteContext(t.Context()), "not ready")
}
