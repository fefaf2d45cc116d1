package hedera

import (
	"strconv"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/pkg/errors"
)

// maxMetadataBytes is the network limit on NFT metadata per serial.
const maxMetadataBytes = 100

var ErrInvalidAsset = errors.New("invalid asset, want <tokenId>/<serial>")

// BuildMintTx mints one serial of tokenID carrying the metadata locator.
func BuildMintTx(tokenID string, metadata string, transactionMemo string) (*hedera.TokenMintTransaction, error) {
	trimmedTokenID := strings.TrimSpace(tokenID)
	if trimmedTokenID == "" {
		return nil, errors.New("token ID is required")
	}
	parsedTokenID, err := hedera.TokenIDFromString(trimmedTokenID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token ID")
	}
	if len(metadata) > maxMetadataBytes {
		return nil, errors.Errorf("metadata is %d bytes, limit is %d", len(metadata), maxMetadataBytes)
	}

	transaction := hedera.NewTokenMintTransaction().
		SetTokenID(parsedTokenID).
		SetMetadata([]byte(metadata))

	if strings.TrimSpace(transactionMemo) != "" {
		transaction.SetTransactionMemo(transactionMemo)
	}

	return transaction, nil
}

// BuildTransferTx moves one NFT serial between accounts.
func BuildTransferTx(nft hedera.NftID, from string, to string) (*hedera.TransferTransaction, error) {
	sender, err := hedera.AccountIDFromString(strings.TrimSpace(from))
	if err != nil {
		return nil, errors.Wrap(err, "invalid sender account ID")
	}
	receiver, err := hedera.AccountIDFromString(strings.TrimSpace(to))
	if err != nil {
		return nil, errors.Wrap(err, "invalid receiver account ID")
	}

	return hedera.NewTransferTransaction().AddNftTransfer(nft, sender, receiver), nil
}

// FormatAsset renders the asset address of an NFT serial.
func FormatAsset(nft hedera.NftID) string {
	return nft.TokenID.String() + "/" + strconv.FormatInt(nft.SerialNumber, 10)
}

// ParseAsset is the inverse of FormatAsset.
func ParseAsset(asset string) (hedera.NftID, error) {
	token, serial, ok := strings.Cut(strings.TrimSpace(asset), "/")
	if !ok {
		return hedera.NftID{}, errors.Wrapf(ErrInvalidAsset, "%q", asset)
	}

	tokenID, err := hedera.TokenIDFromString(token)
	if err != nil {
		return hedera.NftID{}, errors.Wrapf(ErrInvalidAsset, "%q", asset)
	}

	n, err := strconv.ParseInt(serial, 10, 64)
	if err != nil || n <= 0 {
		return hedera.NftID{}, errors.Wrapf(ErrInvalidAsset, "%q", asset)
	}

	return hedera.NftID{TokenID: tokenID, SerialNumber: n}, nil
}
