package minter

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const maxBasisPoints = 10000

// Batch is the full description of a mint-and-transfer run.
type Batch struct {
	Name               string
	Symbol             string
	RoyaltyBasisPoints uint16
	Creators           []CreatorShare
	Items              []Item
	Recipient          string
	Programmable       bool
}

// Validate checks the batch before any network call is made.
func (b Batch) Validate() error {
	if len(b.Items) == 0 {
		return ErrEmptyBatch
	}
	if strings.TrimSpace(b.Recipient) == "" {
		return ErrRecipientRequired
	}
	if b.RoyaltyBasisPoints > maxBasisPoints {
		return errors.Wrapf(ErrRoyaltyOutOfRange, "got %d", b.RoyaltyBasisPoints)
	}
	if err := ValidateCreatorShares(b.Creators); err != nil {
		return err
	}

	for i, item := range b.Items {
		if item.Collection == "" {
			return errors.Wrapf(ErrEmptyAddress, "collection of item %d", i)
		}
		if item.MetadataURI == "" {
			return errors.Errorf("metadata locator of item %d is empty", i)
		}
	}

	return nil
}

// Requests expands the batch into one MintRequest per item, in index order.
// Display names carry a running 1-based counter: "NFT1", "NFT2", ...
func (b Batch) Requests() []MintRequest {
	requests := make([]MintRequest, 0, len(b.Items))
	for i, item := range b.Items {
		creators := make([]CreatorShare, len(b.Creators))
		copy(creators, b.Creators)

		requests = append(requests, MintRequest{
			Index:              i,
			MetadataURI:        item.MetadataURI,
			Name:               fmt.Sprintf("%s%d", b.Name, i+1),
			RoyaltyBasisPoints: b.RoyaltyBasisPoints,
			Symbol:             b.Symbol,
			Collection:         item.Collection,
			Creators:           creators,
			Programmable:       b.Programmable,
		})
	}

	return requests
}
