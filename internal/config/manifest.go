package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/minter"
)

type ManifestCreator struct {
	Address string `toml:"address"`
	Share   uint8  `toml:"share"`
}

type ManifestItem struct {
	Collection  string `toml:"collection"`
	MetadataURI string `toml:"metadata_uri"`
}

// Manifest is the on-disk description of a batch.
type Manifest struct {
	Name                 string            `toml:"name"`
	Symbol               string            `toml:"symbol"`
	SellerFeeBasisPoints uint16            `toml:"seller_fee_basis_points"`
	Recipient            string            `toml:"recipient"`
	Programmable         bool              `toml:"programmable"`
	Creators             []ManifestCreator `toml:"creators"`
	Items                []ManifestItem    `toml:"items"`
}

// DefaultManifest is the devnet batch the tool ships with.
func DefaultManifest() Manifest {
	const gateway = "https://scarlet-official-minnow-138.mypinata.cloud/ipfs/"

	collections := []string{
		"E1sRPdRpcxAcjQCRUKnkMV4jkZRVWeDLbT2TnDSyCyhz",
		"8M7mUHm9L7fPm6dBJFYjqGFWjoxEesawZij2TNuscA6i",
		"8DagZL9qYZwE5DgmRe5Eu6JAG3GA2CFkQArFkinR2ZSR",
	}
	uris := []string{
		gateway + "QmZkvuALEaZX5xK5vhW8osjL84J4Byv9RjecRg7JGfqTNQ",
		gateway + "QmVKCc22rusxHNqVT91Nx8JBRaBGkQ81shR9oyVs5Sx5zp",
		gateway + "QmWESN5aBV5EF1qB1U2JMxGrnn7nK3VNLniWkYTKEeXNSV",
	}

	items := make([]ManifestItem, 0, len(collections))
	for i := range collections {
		items = append(items, ManifestItem{Collection: collections[i], MetadataURI: uris[i]})
	}

	return Manifest{
		Name:                 "NFT",
		Symbol:               "VT",
		SellerFeeBasisPoints: 500, //nolint:mnd // 5%
		Recipient:            "CjGiahcBVbB7oQqBWK8xMP1XKPfKR33S17mSuovCSfyi",
		Creators: []ManifestCreator{
			{Address: "B45t7VFMD9tNbDG8Unzr9z6LbknjwNegD9qDtd7jiLVy", Share: 50}, //nolint:mnd
			{Address: "4x6TeJ7aXDGVtN8Wmh1tCMa1sB3Q6fXRwUptBkYBHbd7", Share: 50}, //nolint:mnd
		},
		Items: items,
	}
}

// LoadManifest decodes a TOML manifest and validates it. An empty path yields
// DefaultManifest.
func LoadManifest(path string) (Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultManifest(), nil
	}

	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, errors.Wrapf(err, "failed to decode manifest %s", path)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Manifest{}, errors.Errorf("unknown manifest keys: %v", undecoded)
	}

	if err := m.Validate(); err != nil {
		return Manifest{}, errors.Wrapf(err, "invalid manifest %s", path)
	}

	return m, nil
}

// Batch converts the manifest into the minter's batch description.
func (m Manifest) Batch() minter.Batch {
	creators := make([]minter.CreatorShare, 0, len(m.Creators))
	for _, c := range m.Creators {
		creators = append(creators, minter.CreatorShare{Address: strings.TrimSpace(c.Address), Share: c.Share})
	}

	items := make([]minter.Item, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, minter.Item{
			Collection:  strings.TrimSpace(it.Collection),
			MetadataURI: strings.TrimSpace(it.MetadataURI),
		})
	}

	return minter.Batch{
		Name:               m.Name,
		Symbol:             m.Symbol,
		RoyaltyBasisPoints: m.SellerFeeBasisPoints,
		Creators:           creators,
		Items:              items,
		Recipient:          strings.TrimSpace(m.Recipient),
		Programmable:       m.Programmable,
	}
}

func (m Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("name is required")
	}

	return m.Batch().Validate()
}
