package minter

import (
	"strings"

	"github.com/pkg/errors"
)

// CreatorShare is one entry of the creator royalty split.
type CreatorShare struct {
	Address string
	Share   uint8 // percentage, all shares of a request sum to 100
}

// MintRequest describes a single token to mint under a collection.
type MintRequest struct {
	Index              int
	MetadataURI        string
	Name               string
	RoyaltyBasisPoints uint16 // 500 = 5%
	Symbol             string
	Collection         string
	Creators           []CreatorShare
	Programmable       bool
}

// MintedAsset is the on-chain identity of a freshly minted token.
type MintedAsset struct {
	Address string
}

// TransferRequest moves a minted asset from the signing authority to the recipient.
type TransferRequest struct {
	Asset        string
	Source       string
	Destination  string
	Programmable bool
}

// Confirmation is what the network reported for a submitted transaction.
// A non-nil Err means the transaction was not confirmed.
type Confirmation struct {
	Signature string
	Err       error
}

// Failed reports whether the confirmation carries an error.
func (c Confirmation) Failed() bool {
	return c.Err != nil
}

// Item pairs a collection with the metadata locator of the token minted into it.
type Item struct {
	Collection  string
	MetadataURI string
}

// ItemResult records a fully processed batch item.
type ItemResult struct {
	Index             int
	Collection        string
	Asset             string
	MintSignature     string
	TransferSignature string
}

// PairItems zips collections and metadata locators by index.
func PairItems(collections []string, metadataURIs []string) ([]Item, error) {
	if len(collections) != len(metadataURIs) {
		return nil, errors.Wrapf(ErrItemCountMismatch, "%d collections, %d metadata locators", len(collections), len(metadataURIs))
	}

	items := make([]Item, 0, len(collections))
	for i := range collections {
		items = append(items, Item{
			Collection:  strings.TrimSpace(collections[i]),
			MetadataURI: strings.TrimSpace(metadataURIs[i]),
		})
	}

	return items, nil
}

// ValidateCreatorShares checks that the split is non-empty, has no blank
// addresses and adds up to exactly 100.
func ValidateCreatorShares(creators []CreatorShare) error {
	if len(creators) == 0 {
		return ErrNoCreators
	}

	total := 0
	for i, c := range creators {
		if strings.TrimSpace(c.Address) == "" {
			return errors.Wrapf(ErrEmptyAddress, "creator %d", i)
		}
		total += int(c.Share)
	}

	if total != 100 { //nolint:mnd // shares are percentages
		return errors.Wrapf(ErrCreatorSharesSum, "got %d", total)
	}

	return nil
}
