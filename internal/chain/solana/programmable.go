package solana

import (
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// Token Metadata instruction discriminators and the V1 variant of each.
const (
	ixCreate   uint8 = 42
	ixMint     uint8 = 43
	ixTransfer uint8 = 49
	variantV1  uint8 = 0

	computeBudgetSetUnitLimit uint8 = 2
	programmableComputeUnits        = 400_000
)

// TokenStandard values of the Token Metadata program.
const (
	TokenStandardNonFungible             uint8 = 0
	TokenStandardFungibleAsset           uint8 = 1
	TokenStandardFungible                uint8 = 2
	TokenStandardNonFungibleEdition      uint8 = 3
	TokenStandardProgrammableNonFungible uint8 = 4
)

var (
	sysvarInstructionsID  = common.PublicKeyFromString("Sysvar1nstructions1111111111111111111111111")
	computeBudgetID       = common.PublicKeyFromString("ComputeBudget111111111111111111111111111111")
	tokenAuthRulesProgram = common.PublicKeyFromString("auth9SigNpDKz4sJJ1DfCTuZrZNSAgh9sFD3rboVmgg")
)

type creatorArg struct {
	Address  common.PublicKey
	Verified bool
	Share    uint8
}

type collectionArg struct {
	Verified bool
	Key      common.PublicKey
}

type usesArg struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type collectionDetailsArg struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   struct{ Size uint64 }
}

type assetData struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]creatorArg
	PrimarySaleHappened  bool
	IsMutable            bool
	TokenStandard        uint8
	Collection           *collectionArg
	Uses                 *usesArg
	CollectionDetails    *collectionDetailsArg
	RuleSet              *common.PublicKey
}

type printSupply struct {
	Enum      borsh.Enum `borsh_enum:"true"`
	Zero      struct{}
	Limited   uint64
	Unlimited struct{}
}

type createV1Data struct {
	Instruction uint8
	Variant     uint8
	AssetData   assetData
	Decimals    *uint8
	PrintSupply *printSupply
}

// authorizationData is always None here; no rule set is attached.
type amountV1Data struct {
	Instruction       uint8
	Variant           uint8
	Amount            uint64
	AuthorizationData *struct{}
}

type computeUnitLimitData struct {
	Instruction uint8
	Units       uint32
}

type programmableMint struct {
	Mint        common.PublicKey
	Authority   common.PublicKey
	Name        string
	Symbol      string
	URI         string
	BasisPoints uint16
	Creators    []creatorArg
	Collection  *common.PublicKey
}

func setComputeUnitLimit(units uint32) (types.Instruction, error) {
	data, err := borsh.Serialize(computeUnitLimitData{Instruction: computeBudgetSetUnitLimit, Units: units})
	if err != nil {
		return types.Instruction{}, errors.Wrap(err, "failed to encode compute unit limit")
	}

	return types.Instruction{ProgramID: computeBudgetID, Accounts: []types.AccountMeta{}, Data: data}, nil
}

// optional fills an absent optional account the way the program expects.
func optional(key *common.PublicKey, writable bool) types.AccountMeta {
	if key == nil {
		return types.AccountMeta{PubKey: common.MetaplexTokenMetaProgramID}
	}

	return types.AccountMeta{PubKey: *key, IsWritable: writable}
}

// programmableMintInstructions creates a ProgrammableNonFungible mint and
// mints the single token into the authority's associated token account.
func programmableMintInstructions(p programmableMint) ([]types.Instruction, error) {
	metadata, err := metadataPDA(p.Mint)
	if err != nil {
		return nil, err
	}
	edition, err := masterEditionPDA(p.Mint)
	if err != nil {
		return nil, err
	}
	ata, err := associatedTokenAddress(p.Authority, p.Mint)
	if err != nil {
		return nil, err
	}
	record, err := tokenRecordPDA(p.Mint, ata)
	if err != nil {
		return nil, err
	}

	var collection *collectionArg
	if p.Collection != nil {
		collection = &collectionArg{Verified: false, Key: *p.Collection}
	}

	creators := p.Creators
	decimals := uint8(0)

	createData, err := borsh.Serialize(createV1Data{
		Instruction: ixCreate,
		Variant:     variantV1,
		AssetData: assetData{
			Name:                 p.Name,
			Symbol:               p.Symbol,
			URI:                  p.URI,
			SellerFeeBasisPoints: p.BasisPoints,
			Creators:             &creators,
			IsMutable:            true,
			TokenStandard:        TokenStandardProgrammableNonFungible,
			Collection:           collection,
		},
		Decimals:    &decimals,
		PrintSupply: &printSupply{Enum: 0},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode create instruction")
	}

	mintData, err := borsh.Serialize(amountV1Data{Instruction: ixMint, Variant: variantV1, Amount: 1})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode mint instruction")
	}

	budget, err := setComputeUnitLimit(programmableComputeUnits)
	if err != nil {
		return nil, err
	}

	create := types.Instruction{
		ProgramID: common.MetaplexTokenMetaProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: metadata, IsWritable: true},
			{PubKey: edition, IsWritable: true},
			{PubKey: p.Mint, IsSigner: true, IsWritable: true},
			{PubKey: p.Authority, IsSigner: true},
			{PubKey: p.Authority, IsSigner: true, IsWritable: true},
			{PubKey: p.Authority, IsSigner: true},
			{PubKey: common.SystemProgramID},
			{PubKey: sysvarInstructionsID},
			{PubKey: common.TokenProgramID},
		},
		Data: createData,
	}

	mint := types.Instruction{
		ProgramID: common.MetaplexTokenMetaProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: ata, IsWritable: true},
			{PubKey: p.Authority},
			{PubKey: metadata},
			{PubKey: edition, IsWritable: true},
			{PubKey: record, IsWritable: true},
			{PubKey: p.Mint, IsWritable: true},
			{PubKey: p.Authority, IsSigner: true},
			optional(nil, false),
			{PubKey: p.Authority, IsSigner: true, IsWritable: true},
			{PubKey: common.SystemProgramID},
			{PubKey: sysvarInstructionsID},
			{PubKey: common.TokenProgramID},
			{PubKey: common.SPLAssociatedTokenAccountProgramID},
			{PubKey: tokenAuthRulesProgram},
			optional(nil, false),
		},
		Data: mintData,
	}

	return []types.Instruction{budget, create, mint}, nil
}

// programmableTransferInstructions moves a ProgrammableNonFungible token from
// owner to destination; the program creates the destination token account.
func programmableTransferInstructions(mint, owner, destination common.PublicKey) ([]types.Instruction, error) {
	metadata, err := metadataPDA(mint)
	if err != nil {
		return nil, err
	}
	edition, err := masterEditionPDA(mint)
	if err != nil {
		return nil, err
	}
	source, err := associatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}
	dest, err := associatedTokenAddress(destination, mint)
	if err != nil {
		return nil, err
	}
	ownerRecord, err := tokenRecordPDA(mint, source)
	if err != nil {
		return nil, err
	}
	destRecord, err := tokenRecordPDA(mint, dest)
	if err != nil {
		return nil, err
	}

	data, err := borsh.Serialize(amountV1Data{Instruction: ixTransfer, Variant: variantV1, Amount: 1})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode transfer instruction")
	}

	budget, err := setComputeUnitLimit(programmableComputeUnits)
	if err != nil {
		return nil, err
	}

	transfer := types.Instruction{
		ProgramID: common.MetaplexTokenMetaProgramID,
		Accounts: []types.AccountMeta{
			{PubKey: source, IsWritable: true},
			{PubKey: owner},
			{PubKey: dest, IsWritable: true},
			{PubKey: destination},
			{PubKey: mint},
			{PubKey: metadata, IsWritable: true},
			{PubKey: edition},
			{PubKey: ownerRecord, IsWritable: true},
			{PubKey: destRecord, IsWritable: true},
			{PubKey: owner, IsSigner: true},
			{PubKey: owner, IsSigner: true, IsWritable: true},
			{PubKey: common.SystemProgramID},
			{PubKey: sysvarInstructionsID},
			{PubKey: common.TokenProgramID},
			{PubKey: common.SPLAssociatedTokenAccountProgramID},
			{PubKey: tokenAuthRulesProgram},
			optional(nil, false),
		},
		Data: data,
	}

	return []types.Instruction{budget, transfer}, nil
}
