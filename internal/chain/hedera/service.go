package hedera

import (
	"context"
	"fmt"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
)

var (
	ErrProgrammableUnsupported = errors.New("programmable tokens are not supported on hedera")
	ErrSourceNotAuthority      = errors.New("transfer source must be the operator account")
	ErrNoSerial                = errors.New("mint receipt carries no serial number")
)

// StatusError is a receipt status other than SUCCESS.
type StatusError struct {
	TransactionID string
	Status        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("transaction %s finished with status %s", e.TransactionID, e.Status)
}

// Service mints serials of an existing HTS NFT token (the collection) and
// transfers them from the operator, which must hold the supply key.
type Service struct {
	exec     Executor
	operator hedera.AccountID
}

var _ minter.TokenService = (*Service)(nil)

func NewService(exec Executor, operator hedera.AccountID) (*Service, error) {
	if exec == nil {
		return nil, errors.New("hedera executor is required")
	}

	return &Service{exec: exec, operator: operator}, nil
}

// Authority returns the operator account ID.
func (s *Service) Authority() string {
	return s.operator.String()
}

func (s *Service) Create(ctx context.Context, req minter.MintRequest) (minter.MintedAsset, minter.Confirmation, error) {
	if req.Programmable {
		return minter.MintedAsset{}, minter.Confirmation{}, ErrProgrammableUnsupported
	}

	tx, err := BuildMintTx(req.Collection, req.MetadataURI, req.Name)
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, err
	}

	receipt, err := s.exec.MintNFT(ctx, tx)
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, err
	}

	conf := confirmation(receipt)
	if conf.Failed() {
		return minter.MintedAsset{}, conf, nil
	}
	if len(receipt.Serials) == 0 {
		return minter.MintedAsset{}, conf, errors.Wrapf(ErrNoSerial, "tx %s", receipt.TransactionID)
	}

	tokenID, err := hedera.TokenIDFromString(strings.TrimSpace(req.Collection))
	if err != nil {
		return minter.MintedAsset{}, conf, errors.Wrap(err, "invalid token ID")
	}

	asset := minter.MintedAsset{Address: FormatAsset(hedera.NftID{TokenID: tokenID, SerialNumber: receipt.Serials[0]})}

	util.LogFromContext(ctx).Info().
		Str("component", "hedera_token_service").
		Int("item", req.Index).
		Str("asset", asset.Address).
		Str("tx", receipt.TransactionID).
		Msg("Mint confirmed")

	return asset, conf, nil
}

func (s *Service) Transfer(ctx context.Context, req minter.TransferRequest) (minter.Confirmation, error) {
	if req.Programmable {
		return minter.Confirmation{}, ErrProgrammableUnsupported
	}

	nft, err := ParseAsset(req.Asset)
	if err != nil {
		return minter.Confirmation{}, err
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = s.Authority()
	}
	if source != s.Authority() {
		return minter.Confirmation{}, errors.Wrapf(ErrSourceNotAuthority, "source %s", source)
	}

	tx, err := BuildTransferTx(nft, source, req.Destination)
	if err != nil {
		return minter.Confirmation{}, err
	}

	receipt, err := s.exec.TransferNFT(ctx, tx)
	if err != nil {
		return minter.Confirmation{}, err
	}

	conf := confirmation(receipt)

	util.LogFromContext(ctx).Info().
		Str("component", "hedera_token_service").
		Str("asset", req.Asset).
		Str("destination", req.Destination).
		Str("tx", receipt.TransactionID).
		Bool("confirmed", !conf.Failed()).
		Msg("Transfer finished")

	return conf, nil
}

func confirmation(receipt Receipt) minter.Confirmation {
	conf := minter.Confirmation{Signature: receipt.TransactionID}
	if receipt.Status != statusSuccess {
		conf.Err = &StatusError{TransactionID: receipt.TransactionID, Status: receipt.Status}
	}

	return conf
}
