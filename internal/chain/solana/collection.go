package solana

import (
	"context"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/minter"
)

// CollectionRequest describes a collection NFT. The authority is the update
// authority and sole creator; no royalty is charged on the collection itself.
type CollectionRequest struct {
	Name   string
	Symbol string
	URI    string
}

// CreateCollection mints the NFT that batch items reference as their collection.
func (s *Service) CreateCollection(ctx context.Context, req CollectionRequest) (minter.MintedAsset, minter.Confirmation, error) {
	if strings.TrimSpace(req.Name) == "" {
		return minter.MintedAsset{}, minter.Confirmation{}, errors.New("collection name is required")
	}
	if strings.TrimSpace(req.URI) == "" {
		return minter.MintedAsset{}, minter.Confirmation{}, errors.New("collection metadata uri is required")
	}

	mint := types.NewAccount()

	ins, err := s.standardMintInstructions(ctx, standardMint{
		Mint:        mint.PublicKey,
		Name:        req.Name,
		Symbol:      req.Symbol,
		URI:         req.URI,
		BasisPoints: 0,
		Creators:    []creatorArg{{Address: s.authority.PublicKey, Verified: true, Share: 100}}, //nolint:mnd
		IsMutable:   true,
	})
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, errors.Wrap(err, "failed to build collection instructions")
	}

	asset := minter.MintedAsset{Address: mint.PublicKey.ToBase58()}

	conf, err := s.sendAndConfirm(ctx, ins, mint)
	if err != nil {
		return asset, conf, err
	}

	s.logger(ctx).Info().
		Str("collection", asset.Address).
		Str("explorer", s.opts.Explorer.Address(asset.Address)).
		Bool("confirmed", !conf.Failed()).
		Msg("Collection NFT submitted")

	return asset, conf, nil
}
