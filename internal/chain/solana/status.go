package solana

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

const signatureLength = 64

// TxStatus summarizes what the cluster knows about a signature.
type TxStatus struct {
	Signature          string     `json:"signature"`
	Found              bool       `json:"found"`
	Slot               uint64     `json:"slot,omitempty"`
	Confirmations      *uint64    `json:"confirmations,omitempty"`
	ConfirmationStatus string     `json:"confirmationStatus,omitempty"`
	Err                string     `json:"err,omitempty"`
	Fee                uint64     `json:"fee,omitempty"`
	BlockTime          *time.Time `json:"blockTime,omitempty"`
	Explorer           string     `json:"explorer"`
}

// TransactionStatus looks up a signature through the service's RPC client.
func (s *Service) TransactionStatus(ctx context.Context, signature string) (TxStatus, error) {
	return LookupTransaction(ctx, s.rpc, s.opts.Explorer, signature)
}

// LookupTransaction reads the status of a signature and, once it has landed,
// its fee and block time. No signing key is involved.
func LookupTransaction(ctx context.Context, rpcClient RPC, explorer Explorer, signature string) (TxStatus, error) {
	sig := strings.TrimSpace(signature)

	raw, err := base58.Decode(sig)
	if err != nil || len(raw) != signatureLength {
		return TxStatus{}, errors.Errorf("invalid transaction signature %q", sig)
	}

	out := TxStatus{Signature: sig, Explorer: explorer.Tx(sig)}

	status, err := rpcClient.GetSignatureStatus(ctx, sig)
	if err != nil {
		return TxStatus{}, errors.Wrap(err, "failed to get signature status")
	}
	if status == nil {
		return out, nil
	}

	out.Found = true
	out.Slot = status.Slot
	out.Confirmations = status.Confirmations
	if status.ConfirmationStatus != nil {
		out.ConfirmationStatus = string(*status.ConfirmationStatus)
	}
	if status.Err != nil {
		out.Err = fmt.Sprintf("%v", status.Err)
	}

	tx, err := rpcClient.GetTransaction(ctx, sig)
	if err != nil {
		return TxStatus{}, errors.Wrap(err, "failed to get transaction")
	}
	if tx == nil {
		return out, nil
	}

	if tx.Meta != nil {
		out.Fee = tx.Meta.Fee
	}
	if tx.BlockTime != nil {
		t := time.Unix(*tx.BlockTime, 0).UTC()
		out.BlockTime = &t
	}

	return out, nil
}
