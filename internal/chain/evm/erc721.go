package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// erc721ABI covers OpenZeppelin's ERC721URIStorage preset with an owner-only
// safeMint(to, uri).
const erc721ABI = `[
  {"type":"function","name":"safeMint","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"uri","type":"string"}],"outputs":[]},
  {"type":"function","name":"safeTransferFrom","stateMutability":"nonpayable",
   "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"Transfer","anonymous":false,
   "inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"tokenId","type":"uint256","indexed":true}]}
]`

var (
	ErrInvalidAsset   = errors.New("invalid asset, want <contract>/<tokenId>")
	ErrTokenIDMissing = errors.New("no Transfer event for the minted token")
)

// ERC721ABI is the parsed contract ABI.
var ERC721ABI = mustParseABI(erc721ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}

	return parsed
}

func packSafeMint(to common.Address, uri string) ([]byte, error) {
	data, err := ERC721ABI.Pack("safeMint", to, uri)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack safeMint")
	}

	return data, nil
}

func packSafeTransferFrom(from, to common.Address, tokenID *big.Int) ([]byte, error) {
	data, err := ERC721ABI.Pack("safeTransferFrom", from, to, tokenID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack safeTransferFrom")
	}

	return data, nil
}

// mintedTokenID finds the Transfer(0x0, to, id) log emitted by contract.
func mintedTokenID(receipt *types.Receipt, contract, to common.Address) (*big.Int, error) {
	transferID := ERC721ABI.Events["Transfer"].ID

	const indexedTopics = 4
	for _, l := range receipt.Logs {
		if l.Address != contract || len(l.Topics) != indexedTopics || l.Topics[0] != transferID {
			continue
		}
		if common.BytesToAddress(l.Topics[1].Bytes()) != (common.Address{}) {
			continue
		}
		if common.BytesToAddress(l.Topics[2].Bytes()) != to {
			continue
		}

		return l.Topics[3].Big(), nil
	}

	return nil, ErrTokenIDMissing
}

// FormatAsset renders the asset address used for ERC-721 tokens.
func FormatAsset(contract common.Address, tokenID *big.Int) string {
	return contract.Hex() + "/" + tokenID.String()
}

// ParseAsset is the inverse of FormatAsset.
func ParseAsset(asset string) (common.Address, *big.Int, error) {
	contract, id, ok := strings.Cut(strings.TrimSpace(asset), "/")
	if !ok || !common.IsHexAddress(contract) {
		return common.Address{}, nil, errors.Wrapf(ErrInvalidAsset, "%q", asset)
	}

	const base10 = 10
	tokenID, ok := new(big.Int).SetString(id, base10)
	if !ok || tokenID.Sign() < 0 {
		return common.Address{}, nil, errors.Wrapf(ErrInvalidAsset, "%q", asset)
	}

	return common.HexToAddress(contract), tokenID, nil
}
