package minter

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrEmptyBatch           = errors.New("batch has no items")
	ErrItemCountMismatch    = errors.New("collections and metadata locators differ in length")
	ErrNoCreators           = errors.New("at least one creator is required")
	ErrCreatorSharesSum     = errors.New("creator shares must sum to 100")
	ErrEmptyAddress         = errors.New("address is empty")
	ErrRoyaltyOutOfRange    = errors.New("royalty basis points must be within 0..10000")
	ErrRecipientRequired    = errors.New("recipient address is required")
	ErrTokenServiceRequired = errors.New("token service is required")
)

// MintConfirmationError is raised when the network did not confirm a mint.
type MintConfirmationError struct {
	Index      int
	Collection string
	Signature  string
	Cause      error
}

func (e *MintConfirmationError) Error() string {
	return fmt.Sprintf("mint of item %d (collection %s) not confirmed: tx=%s: %v", e.Index, e.Collection, e.Signature, e.Cause)
}

func (e *MintConfirmationError) Unwrap() error {
	return e.Cause
}

// TransferConfirmationError is raised when the network did not confirm a transfer.
type TransferConfirmationError struct {
	Index     int
	Asset     string
	Signature string
	Cause     error
}

func (e *TransferConfirmationError) Error() string {
	return fmt.Sprintf("transfer of item %d (asset %s) not confirmed: tx=%s: %v", e.Index, e.Asset, e.Signature, e.Cause)
}

func (e *TransferConfirmationError) Unwrap() error {
	return e.Cause
}
