package collection_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/cmd/collection"
)

func run(t *testing.T, args ...string) error {
	t.Helper()

	cmd := collection.New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	return cmd.ExecuteContext(t.Context())
}

func TestCreateRequiresNameAndURI(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "solana")

	err := run(t, "create", "--symbol", "VT")
	require.ErrorContains(t, err, `required flag(s) "name", "uri" not set`)

	err = run(t, "create", "--name", "VTopia")
	require.ErrorContains(t, err, `required flag(s) "uri" not set`)
}

func TestCreateNeedsSolana(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "evm")
	t.Setenv("MINTER_EVM_RPC_URLS", "http://127.0.0.1:1")

	err := run(t, "create", "--name", "VTopia", "--uri", "https://example.com/collection.json")
	require.ErrorContains(t, err, "needs network solana")
}

func TestCreateFailsWithoutIdentity(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "solana")
	t.Setenv("MINTER_IDENTITY_SOURCE", "keypair-file")
	t.Setenv("MINTER_IDENTITY_PATH", t.TempDir()+"/missing.json")

	err := run(t, "create", "--name", "VTopia", "--uri", "https://example.com/collection.json")
	require.ErrorContains(t, err, "failed to load identity")
}
