package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/minter"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "batch.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefaultManifest(t *testing.T) {
	m := config.DefaultManifest()
	require.NoError(t, m.Validate())

	batch := m.Batch()
	assert.Len(t, batch.Items, 3)
	assert.Equal(t, uint16(500), batch.RoyaltyBasisPoints)
	assert.Equal(t, "VT", batch.Symbol)

	requests := batch.Requests()
	assert.Equal(t, "NFT1", requests[0].Name)
	assert.Equal(t, "NFT3", requests[2].Name)
	assert.Equal(t, "8DagZL9qYZwE5DgmRe5Eu6JAG3GA2CFkQArFkinR2ZSR", requests[2].Collection)
}

func TestLoadManifestEmptyPathIsDefault(t *testing.T) {
	m, err := config.LoadManifest("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultManifest(), m)
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
name = "Ticket"
symbol = "TIX"
seller_fee_basis_points = 250
recipient = "CjGiahcBVbB7oQqBWK8xMP1XKPfKR33S17mSuovCSfyi"
programmable = true

[[creators]]
address = "B45t7VFMD9tNbDG8Unzr9z6LbknjwNegD9qDtd7jiLVy"
share = 100

[[items]]
collection = "E1sRPdRpcxAcjQCRUKnkMV4jkZRVWeDLbT2TnDSyCyhz"
metadata_uri = "https://example.com/1.json"

[[items]]
collection = "8M7mUHm9L7fPm6dBJFYjqGFWjoxEesawZij2TNuscA6i"
metadata_uri = "https://example.com/2.json"
`)

	m, err := config.LoadManifest(path)
	require.NoError(t, err)

	batch := m.Batch()
	assert.True(t, batch.Programmable)
	assert.Equal(t, uint16(250), batch.RoyaltyBasisPoints)
	require.Len(t, batch.Items, 2)
	assert.Equal(t, "https://example.com/2.json", batch.Items[1].MetadataURI)
}

func TestLoadManifestRejectsBadShares(t *testing.T) {
	path := writeManifest(t, `
name = "Ticket"
symbol = "TIX"
recipient = "CjGiahcBVbB7oQqBWK8xMP1XKPfKR33S17mSuovCSfyi"

[[creators]]
address = "B45t7VFMD9tNbDG8Unzr9z6LbknjwNegD9qDtd7jiLVy"
share = 60

[[items]]
collection = "E1sRPdRpcxAcjQCRUKnkMV4jkZRVWeDLbT2TnDSyCyhz"
metadata_uri = "https://example.com/1.json"
`)

	_, err := config.LoadManifest(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, minter.ErrCreatorSharesSum))
}

func TestLoadManifestRejectsUnknownKeys(t *testing.T) {
	path := writeManifest(t, `
name = "Ticket"
colour = "red"
`)

	_, err := config.LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}
