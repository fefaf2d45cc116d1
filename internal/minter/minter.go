package minter

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/nft-minter/internal/util"
)

// Minter runs batches strictly one item at a time: every minted asset is
// transferred before the next mint starts.
type Minter struct {
	tokens    TokenService
	authority string
	observer  Observer
	now       func() time.Time
}

// Option customizes a Minter.
type Option func(*Minter)

// WithObserver reports step outcomes to o.
func WithObserver(o Observer) Option {
	return func(m *Minter) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithClock replaces time.Now, used for step durations.
func WithClock(now func() time.Time) Option {
	return func(m *Minter) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a Minter that mints through tokens and transfers from authority.
func New(tokens TokenService, authority string, opts ...Option) (*Minter, error) {
	if tokens == nil {
		return nil, ErrTokenServiceRequired
	}
	if authority == "" {
		return nil, errors.Wrap(ErrEmptyAddress, "authority")
	}

	m := &Minter{
		tokens:    tokens,
		authority: authority,
		observer:  noopObserver{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// Authority returns the address that signs and funds every step.
func (m *Minter) Authority() string {
	return m.authority
}

// Run mints and transfers every item of the batch in index order. The first
// failing step aborts the run; results for the items completed so far are
// returned together with the error.
func (m *Minter) Run(ctx context.Context, batch Batch) ([]ItemResult, error) {
	if err := batch.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid batch")
	}

	logger := m.logger(ctx)
	requests := batch.Requests()
	results := make([]ItemResult, 0, len(requests))

	logger.Info().
		Int("items", len(requests)).
		Str("recipient", batch.Recipient).
		Bool("programmable", batch.Programmable).
		Msg("Starting batch")

	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, "batch interrupted")
		}

		result, err := m.runItem(ctx, logger, req, batch.Recipient)
		if err != nil {
			logger.Error().Err(err).Int("index", req.Index).Msg("Batch aborted")
			return results, err
		}

		results = append(results, result)
	}

	logger.Info().Int("items", len(results)).Msg("Batch completed")

	return results, nil
}

func (m *Minter) runItem(ctx context.Context, logger zerolog.Logger, req MintRequest, recipient string) (ItemResult, error) {
	itemLog := logger.With().
		Int("index", req.Index).
		Str("collection", req.Collection).
		Str("name", req.Name).
		Logger()

	itemLog.Info().Str("uri", req.MetadataURI).Msg("Minting token")

	started := m.now()
	asset, mintConf, err := m.tokens.Create(ctx, req)
	mintSeconds := m.now().Sub(started).Seconds()
	if err != nil {
		m.observer.ObserveMint(OutcomeError, mintSeconds)
		return ItemResult{}, errors.Wrapf(err, "failed to mint item %d", req.Index)
	}
	if mintConf.Failed() {
		m.observer.ObserveMint(OutcomeFailed, mintSeconds)
		return ItemResult{}, &MintConfirmationError{
			Index:      req.Index,
			Collection: req.Collection,
			Signature:  mintConf.Signature,
			Cause:      mintConf.Err,
		}
	}
	m.observer.ObserveMint(OutcomeConfirmed, mintSeconds)

	itemLog.Info().
		Str("asset", asset.Address).
		Str("tx", mintConf.Signature).
		Msg("Token minted")

	transfer := TransferRequest{
		Asset:        asset.Address,
		Source:       m.authority,
		Destination:  recipient,
		Programmable: req.Programmable,
	}

	started = m.now()
	transferConf, err := m.tokens.Transfer(ctx, transfer)
	transferSeconds := m.now().Sub(started).Seconds()
	if err != nil {
		m.observer.ObserveTransfer(OutcomeError, transferSeconds)
		return ItemResult{}, errors.Wrapf(err, "failed to transfer item %d", req.Index)
	}
	if transferConf.Failed() {
		m.observer.ObserveTransfer(OutcomeFailed, transferSeconds)
		return ItemResult{}, &TransferConfirmationError{
			Index:     req.Index,
			Asset:     asset.Address,
			Signature: transferConf.Signature,
			Cause:     transferConf.Err,
		}
	}
	m.observer.ObserveTransfer(OutcomeConfirmed, transferSeconds)

	itemLog.Info().
		Str("asset", asset.Address).
		Str("to", recipient).
		Str("tx", transferConf.Signature).
		Msg("Token transferred")

	return ItemResult{
		Index:             req.Index,
		Collection:        req.Collection,
		Asset:             asset.Address,
		MintSignature:     mintConf.Signature,
		TransferSignature: transferConf.Signature,
	}, nil
}

func (m *Minter) logger(ctx context.Context) zerolog.Logger {
	return util.LogFromContext(ctx).With().Str("component", "batch_minter").Logger()
}
