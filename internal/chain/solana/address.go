package solana

import (
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var ErrInvalidAddress = errors.New("invalid solana address")

// ParsePublicKey decodes a base58 address and checks it is 32 bytes.
// common.PublicKeyFromString silently truncates or pads bad input.
func ParsePublicKey(address string) (common.PublicKey, error) {
	s := strings.TrimSpace(address)
	if s == "" {
		return common.PublicKey{}, errors.Wrap(ErrInvalidAddress, "empty")
	}

	b, err := base58.Decode(s)
	if err != nil {
		return common.PublicKey{}, errors.Wrapf(ErrInvalidAddress, "%q is not base58", s)
	}
	if len(b) != common.PublicKeyLength {
		return common.PublicKey{}, errors.Wrapf(ErrInvalidAddress, "%q decodes to %d bytes", s, len(b))
	}

	return common.PublicKeyFromBytes(b), nil
}

// ValidateAddress reports whether address is a well formed public key.
func ValidateAddress(address string) error {
	_, err := ParsePublicKey(address)
	return err
}

func findPDA(programID common.PublicKey, seeds ...[]byte) (common.PublicKey, error) {
	pda, _, err := common.FindProgramAddress(seeds, programID)
	if err != nil {
		return common.PublicKey{}, errors.Wrap(err, "failed to derive program address")
	}

	return pda, nil
}

func metadataPDA(mint common.PublicKey) (common.PublicKey, error) {
	return findPDA(common.MetaplexTokenMetaProgramID,
		[]byte("metadata"), common.MetaplexTokenMetaProgramID.Bytes(), mint.Bytes())
}

func masterEditionPDA(mint common.PublicKey) (common.PublicKey, error) {
	return findPDA(common.MetaplexTokenMetaProgramID,
		[]byte("metadata"), common.MetaplexTokenMetaProgramID.Bytes(), mint.Bytes(), []byte("edition"))
}

func tokenRecordPDA(mint common.PublicKey, tokenAccount common.PublicKey) (common.PublicKey, error) {
	return findPDA(common.MetaplexTokenMetaProgramID,
		[]byte("metadata"), common.MetaplexTokenMetaProgramID.Bytes(), mint.Bytes(),
		[]byte("token_record"), tokenAccount.Bytes())
}

func associatedTokenAddress(owner common.PublicKey, mint common.PublicKey) (common.PublicKey, error) {
	ata, _, err := common.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return common.PublicKey{}, errors.Wrap(err, "failed to derive associated token address")
	}

	return ata, nil
}
