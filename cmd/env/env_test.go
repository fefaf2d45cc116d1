package env_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/cmd/env"
)

func TestEnvMasksSecrets(t *testing.T) {
	t.Setenv("MINTER_NETWORK", "evm")
	t.Setenv("MINTER_EVM_RPC_URLS", "https://rpc-a.example, https://rpc-b.example")
	t.Setenv("MINTER_IDENTITY_SOURCE", "hex")
	t.Setenv("MINTER_IDENTITY_SECRET", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	cmd := env.New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.ExecuteContext(t.Context()))
	assert.NotContains(t, out.String(), "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	var printed struct {
		Network string
		EVM     struct{ RPCURLs []string }
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, "evm", printed.Network)
	assert.Equal(t, []string{"https://rpc-a.example", "https://rpc-b.example"}, printed.EVM.RPCURLs)
}
