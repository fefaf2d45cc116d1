package solana_test

import (
	"bytes"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/chain/solana"
)

func TestCreateCollectionLogsThroughContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(t.Context())

	svc := newService(t, newFakeRPC(), types.NewAccount())

	asset, _, err := svc.CreateCollection(ctx, solana.CollectionRequest{
		Name: "VTopia Collection",
		URI:  "https://example.com/collection.json",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"solana_token_service"`)
	assert.Contains(t, out, `"message":"Collection NFT submitted"`)
	assert.Contains(t, out, `"collection":"`+asset.Address+`"`)
}
