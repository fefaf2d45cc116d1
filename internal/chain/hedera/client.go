package hedera

import (
	"context"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/pkg/errors"
)

const statusSuccess = "SUCCESS"

// Receipt is the part of a transaction receipt the service reads.
type Receipt struct {
	TransactionID string
	Status        string
	Serials       []int64
}

// Executor submits transactions and waits for their receipts. A receipt with a
// non-success status is returned without error.
type Executor interface {
	MintNFT(ctx context.Context, tx *hedera.TokenMintTransaction) (Receipt, error)
	TransferNFT(ctx context.Context, tx *hedera.TransferTransaction) (Receipt, error)
}

// NormalizeNetwork accepts mainnet, testnet and previewnet; empty means testnet.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return "testnet", nil
	}

	switch normalized {
	case "mainnet", "testnet", "previewnet":
		return normalized, nil
	default:
		return "", errors.Errorf("unsupported hedera network %q", network)
	}
}

// NewClient returns an SDK client for network operated by operatorID/key.
func NewClient(network string, operatorID string, key hedera.PrivateKey) (*hedera.Client, hedera.AccountID, error) {
	normalized, err := NormalizeNetwork(network)
	if err != nil {
		return nil, hedera.AccountID{}, err
	}

	accountID, err := hedera.AccountIDFromString(strings.TrimSpace(operatorID))
	if err != nil {
		return nil, hedera.AccountID{}, errors.Wrap(err, "invalid operator account ID")
	}

	client, err := hedera.ClientForName(normalized)
	if err != nil {
		return nil, hedera.AccountID{}, errors.Wrap(err, "failed to create hedera client")
	}
	client.SetOperator(accountID, key)

	return client, accountID, nil
}

type sdkExecutor struct {
	client *hedera.Client
}

// NewExecutor wraps an operated SDK client.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewExecutor(client *hedera.Client) Executor {
	return &sdkExecutor{client: client}
}

func (e *sdkExecutor) MintNFT(ctx context.Context, tx *hedera.TokenMintTransaction) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	response, err := tx.Execute(e.client)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "failed to execute mint transaction")
	}

	return e.receipt(response)
}

func (e *sdkExecutor) TransferNFT(ctx context.Context, tx *hedera.TransferTransaction) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	response, err := tx.Execute(e.client)
	if err != nil {
		return Receipt{}, errors.Wrap(err, "failed to execute transfer transaction")
	}

	return e.receipt(response)
}

func (e *sdkExecutor) receipt(response hedera.TransactionResponse) (Receipt, error) {
	out := Receipt{TransactionID: response.TransactionID.String()}

	receipt, err := response.GetReceipt(e.client)
	if err != nil {
		var statusErr hedera.ErrHederaReceiptStatus
		if errors.As(err, &statusErr) {
			out.Status = statusErr.Status.String()
			return out, nil
		}
		return out, errors.Wrap(err, "failed to retrieve receipt")
	}

	out.Status = receipt.Status.String()
	out.Serials = receipt.SerialNumbers

	return out, nil
}
