package solana

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
)

var (
	ErrConfirmationTimeout = errors.New("transaction not confirmed before timeout")
	ErrSourceNotAuthority  = errors.New("transfer source must be the signing authority")
)

// TransactionError is the error field of a signature status, as reported by the cluster.
type TransactionError struct {
	Signature string
	Detail    any
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Signature, e.Detail)
}

type Options struct {
	Commitment     rpc.Commitment
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Explorer       Explorer
}

// Service mints and transfers Metaplex NFTs with a single signing authority.
type Service struct {
	rpc       RPC
	authority types.Account
	opts      Options
}

var _ minter.TokenService = (*Service)(nil)

func NewService(rpcClient RPC, authority types.Account, opts Options) (*Service, error) {
	if rpcClient == nil {
		return nil, errors.New("solana rpc client is required")
	}
	if authority.PublicKey == (common.PublicKey{}) {
		return nil, errors.New("solana authority is required")
	}

	if opts.Commitment == "" {
		opts.Commitment = rpc.CommitmentFinalized
	}
	if opts.ConfirmTimeout <= 0 {
		opts.ConfirmTimeout = 90 * time.Second //nolint:mnd
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second //nolint:mnd
	}

	return &Service{rpc: rpcClient, authority: authority, opts: opts}, nil
}

// Authority returns the base58 address of the signing account.
func (s *Service) Authority() string {
	return s.authority.PublicKey.ToBase58()
}

func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	l := util.LogFromContext(ctx).With().Str("component", "solana_token_service").Logger()

	return &l
}

// Create mints one NFT into the authority's token account under req.Collection.
func (s *Service) Create(ctx context.Context, req minter.MintRequest) (minter.MintedAsset, minter.Confirmation, error) {
	log := s.logger(ctx).With().Int("item", req.Index).Str("collection", req.Collection).Logger()

	collection, err := ParsePublicKey(req.Collection)
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, errors.Wrap(err, "collection")
	}

	creators, err := s.creators(req.Creators)
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, err
	}

	mint := types.NewAccount()

	var ins []types.Instruction
	if req.Programmable {
		ins, err = programmableMintInstructions(programmableMint{
			Mint:        mint.PublicKey,
			Authority:   s.authority.PublicKey,
			Name:        req.Name,
			Symbol:      req.Symbol,
			URI:         req.MetadataURI,
			BasisPoints: req.RoyaltyBasisPoints,
			Creators:    creators,
			Collection:  &collection,
		})
	} else {
		ins, err = s.standardMintInstructions(ctx, standardMint{
			Mint:        mint.PublicKey,
			Name:        req.Name,
			Symbol:      req.Symbol,
			URI:         req.MetadataURI,
			BasisPoints: req.RoyaltyBasisPoints,
			Creators:    creators,
			Collection:  &collection,
			IsMutable:   false,
		})
	}
	if err != nil {
		return minter.MintedAsset{}, minter.Confirmation{}, errors.Wrap(err, "failed to build mint instructions")
	}

	asset := minter.MintedAsset{Address: mint.PublicKey.ToBase58()}

	conf, err := s.sendAndConfirm(ctx, ins, mint)
	if err != nil {
		return asset, conf, err
	}

	log.Info().
		Bool("programmable", req.Programmable).
		Str("mint", asset.Address).
		Str("explorer", s.opts.Explorer.Address(asset.Address)).
		Str("tx", s.opts.Explorer.Tx(conf.Signature)).
		Bool("confirmed", !conf.Failed()).
		Msg("Mint submitted")

	return asset, conf, nil
}

// Transfer moves the token from the authority to req.Destination, creating the
// destination token account when needed.
func (s *Service) Transfer(ctx context.Context, req minter.TransferRequest) (minter.Confirmation, error) {
	log := s.logger(ctx).With().Str("mint", req.Asset).Str("destination", req.Destination).Logger()

	mint, err := ParsePublicKey(req.Asset)
	if err != nil {
		return minter.Confirmation{}, errors.Wrap(err, "asset")
	}
	destination, err := ParsePublicKey(req.Destination)
	if err != nil {
		return minter.Confirmation{}, errors.Wrap(err, "destination")
	}
	if src := strings.TrimSpace(req.Source); src != "" && src != s.Authority() {
		return minter.Confirmation{}, errors.Wrapf(ErrSourceNotAuthority, "source %s", src)
	}

	var ins []types.Instruction
	if req.Programmable {
		ins, err = programmableTransferInstructions(mint, s.authority.PublicKey, destination)
	} else {
		ins, err = s.standardTransferInstructions(ctx, mint, destination)
	}
	if err != nil {
		return minter.Confirmation{}, errors.Wrap(err, "failed to build transfer instructions")
	}

	conf, err := s.sendAndConfirm(ctx, ins)
	if err != nil {
		return conf, err
	}

	log.Info().
		Bool("programmable", req.Programmable).
		Str("tx", s.opts.Explorer.Tx(conf.Signature)).
		Bool("confirmed", !conf.Failed()).
		Msg("Transfer submitted")

	return conf, nil
}

func (s *Service) creators(shares []minter.CreatorShare) ([]creatorArg, error) {
	out := make([]creatorArg, 0, len(shares))
	for i, c := range shares {
		key, err := ParsePublicKey(c.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "creator %d", i)
		}
		out = append(out, creatorArg{
			Address:  key,
			Verified: key == s.authority.PublicKey,
			Share:    c.Share,
		})
	}

	return out, nil
}

// sendAndConfirm signs with the authority plus extra, submits and waits for
// the configured commitment. A cluster-reported failure is returned inside the
// Confirmation, not as an error.
func (s *Service) sendAndConfirm(ctx context.Context, ins []types.Instruction, extra ...types.Account) (minter.Confirmation, error) {
	latest, err := s.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return minter.Confirmation{}, errors.Wrap(err, "failed to get latest blockhash")
	}

	signers := append([]types.Account{s.authority}, extra...)

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        s.authority.PublicKey,
			RecentBlockhash: latest.Blockhash,
			Instructions:    ins,
		}),
	})
	if err != nil {
		return minter.Confirmation{}, errors.Wrap(err, "failed to build transaction")
	}

	sig, err := s.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return minter.Confirmation{}, errors.Wrap(err, "failed to send transaction")
	}

	return s.waitForConfirmation(ctx, sig)
}

func (s *Service) waitForConfirmation(parent context.Context, sig string) (minter.Confirmation, error) {
	log := s.logger(parent).With().Str("signature", sig).Logger()

	ctx, cancel := context.WithTimeout(parent, s.opts.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.rpc.GetSignatureStatus(ctx, sig)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				log.Debug().Err(err).Msg("Signature status lookup failed, polling again")
			}
		case status == nil:
		case status.Err != nil:
			return minter.Confirmation{Signature: sig, Err: &TransactionError{Signature: sig, Detail: status.Err}}, nil
		case reachedCommitment(status, s.opts.Commitment):
			return minter.Confirmation{Signature: sig}, nil
		}

		select {
		case <-ctx.Done():
			if err := parent.Err(); err != nil {
				return minter.Confirmation{Signature: sig}, errors.Wrap(err, "confirmation wait interrupted")
			}
			return minter.Confirmation{Signature: sig, Err: errors.Wrapf(ErrConfirmationTimeout, "after %s", s.opts.ConfirmTimeout)}, nil
		case <-ticker.C:
		}
	}
}

func commitmentRank(c rpc.Commitment) int {
	switch c {
	case rpc.CommitmentProcessed:
		return 1
	case rpc.CommitmentConfirmed:
		return 2 //nolint:mnd
	case rpc.CommitmentFinalized:
		return 3 //nolint:mnd
	default:
		return 0
	}
}

// reachedCommitment treats a status without confirmation level as rooted.
func reachedCommitment(status *rpc.SignatureStatus, want rpc.Commitment) bool {
	if status.ConfirmationStatus == nil {
		return status.Confirmations == nil
	}

	return commitmentRank(*status.ConfirmationStatus) >= commitmentRank(want)
}
