package solana

import (
	"context"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/pkg/errors"
)

type standardMint struct {
	Mint        common.PublicKey
	Name        string
	Symbol      string
	URI         string
	BasisPoints uint16
	Creators    []creatorArg
	Collection  *common.PublicKey
	IsMutable   bool
}

// standardMintInstructions creates a NonFungible mint with metadata and a
// master edition (no prints) and mints the token to the authority.
func (s *Service) standardMintInstructions(ctx context.Context, p standardMint) ([]types.Instruction, error) {
	authority := s.authority.PublicKey

	ata, err := associatedTokenAddress(authority, p.Mint)
	if err != nil {
		return nil, err
	}

	metadataPubkey, err := token_metadata.GetTokenMetaPubkey(p.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive metadata address")
	}
	masterEditionPubkey, err := token_metadata.GetMasterEdition(p.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive master edition address")
	}

	mintRent, err := s.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get mint rent")
	}

	creators := make([]token_metadata.Creator, 0, len(p.Creators))
	for _, c := range p.Creators {
		creators = append(creators, token_metadata.Creator{Address: c.Address, Verified: c.Verified, Share: c.Share})
	}

	var collection *token_metadata.Collection
	if p.Collection != nil {
		collection = &token_metadata.Collection{Verified: false, Key: *p.Collection}
	}

	maxSupply := uint64(0)

	return []types.Instruction{
		system.CreateAccount(system.CreateAccountParam{
			From:     authority,
			New:      p.Mint,
			Owner:    common.TokenProgramID,
			Lamports: mintRent,
			Space:    token.MintAccountSize,
		}),
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   0,
			Mint:       p.Mint,
			MintAuth:   authority,
			FreezeAuth: &authority,
		}),
		token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
			Metadata:                metadataPubkey,
			Mint:                    p.Mint,
			MintAuthority:           authority,
			UpdateAuthority:         authority,
			Payer:                   authority,
			UpdateAuthorityIsSigner: true,
			IsMutable:               p.IsMutable,
			Data: token_metadata.DataV2{
				Name:                 p.Name,
				Symbol:               p.Symbol,
				Uri:                  p.URI,
				SellerFeeBasisPoints: p.BasisPoints,
				Creators:             &creators,
				Collection:           collection,
			},
		}),
		associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 authority,
			Owner:                  authority,
			Mint:                   p.Mint,
			AssociatedTokenAccount: ata,
		}),
		token.MintTo(token.MintToParam{
			Mint:   p.Mint,
			To:     ata,
			Auth:   authority,
			Amount: 1,
		}),
		token_metadata.CreateMasterEditionV3(token_metadata.CreateMasterEditionParam{
			Edition:         masterEditionPubkey,
			Mint:            p.Mint,
			UpdateAuthority: authority,
			MintAuthority:   authority,
			Metadata:        metadataPubkey,
			Payer:           authority,
			MaxSupply:       &maxSupply,
		}),
	}, nil
}

// standardTransferInstructions is an SPL transfer of the single token,
// preceded by creating the destination account when it does not exist.
func (s *Service) standardTransferInstructions(ctx context.Context, mint, destination common.PublicKey) ([]types.Instruction, error) {
	owner := s.authority.PublicKey

	fromATA, err := associatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	toATA, err := associatedTokenAddress(destination, mint)
	if err != nil {
		return nil, err
	}

	toExists, err := s.accountExists(ctx, toATA)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check destination token account")
	}

	ins := make([]types.Instruction, 0, 2) //nolint:mnd
	if !toExists {
		ins = append(ins, associated_token_account.CreateAssociatedTokenAccount(associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 owner,
			Owner:                  destination,
			Mint:                   mint,
			AssociatedTokenAccount: toATA,
		}))
	}

	ins = append(ins, token.Transfer(token.TransferParam{
		From:   fromATA,
		To:     toATA,
		Auth:   owner,
		Amount: 1,
	}))

	return ins, nil
}

func (s *Service) accountExists(ctx context.Context, address common.PublicKey) (bool, error) {
	info, err := s.rpc.GetAccountInfo(ctx, address.ToBase58())
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "not found") ||
			strings.Contains(msg, "could not find account") ||
			strings.Contains(msg, "account does not exist") {
			return false, nil
		}
		return false, err
	}

	return info.Owner != (common.PublicKey{}), nil
}
