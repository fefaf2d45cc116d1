package tx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/cmd/tx"
)

func run(t *testing.T, args ...string) error {
	t.Helper()

	cmd := tx.New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	return cmd.ExecuteContext(t.Context())
}

func TestStatusRejectsInvalidSolanaSignature(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "solana")
	t.Setenv("MINTER_SOLANA_RPC_URL", "http://127.0.0.1:1")

	err := run(t, "status", "not-a-signature")
	require.ErrorContains(t, err, "invalid transaction signature")
}

func TestStatusRejectsInvalidEVMHash(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "evm")
	t.Setenv("MINTER_EVM_RPC_URLS", "http://127.0.0.1:1")

	err := run(t, "status", "0x1234")
	require.ErrorContains(t, err, "invalid transaction hash")
}

func TestStatusUnavailableOnHedera(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "hedera")
	t.Setenv("MINTER_HEDERA_OPERATOR_ACCOUNT_ID", "0.0.2")

	err := run(t, "status", "0.0.2@1700000000.000000001")
	require.ErrorContains(t, err, "not available")
}

func TestStatusRequiresSignature(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "solana")

	require.Error(t, run(t, "status"))
}
