package minter

import "context"

// TokenService is the chain-side collaborator of the batch minter. Each
// supported network provides one implementation.
type TokenService interface {
	// Create mints a token described by req and reports the mint confirmation.
	Create(ctx context.Context, req MintRequest) (MintedAsset, Confirmation, error)

	// Transfer moves a minted asset and reports the transfer confirmation.
	Transfer(ctx context.Context, req TransferRequest) (Confirmation, error)
}

// Observer receives the outcome and duration of every mint and transfer.
type Observer interface {
	ObserveMint(outcome Outcome, seconds float64)
	ObserveTransfer(outcome Outcome, seconds float64)
}

// Outcome classifies a finished step.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed"
	OutcomeError     Outcome = "error"
)

type noopObserver struct{}

func (noopObserver) ObserveMint(Outcome, float64)     {}
func (noopObserver) ObserveTransfer(Outcome, float64) {}
