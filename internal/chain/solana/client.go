package solana

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/google/uuid"
	"github/chapool/nft-minter/internal/config"
)

const (
	sessionHeader  = "x-session-hash"
	defaultTimeout = 30 * time.Second
)

// RPC is the subset of the blocto client the backend needs.
type RPC interface {
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	GetTransaction(ctx context.Context, txhash string) (*client.Transaction, error)
}

var _ RPC = (*client.Client)(nil)

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}

	return t.base.RoundTrip(r)
}

// SessionHash returns the configured session header value or a fresh random one.
func SessionHash(cfg config.Solana) string {
	if s := strings.TrimSpace(cfg.SessionHeader); s != "" {
		return s
	}

	return "minter-" + uuid.NewString()
}

// NewRPC builds a blocto client that tags every request with the session header.
func NewRPC(cfg config.Solana, session string) *client.Client {
	httpClient := &http.Client{
		Timeout: defaultTimeout,
		Transport: &headerTransport{
			base:    http.DefaultTransport,
			headers: map[string]string{sessionHeader: session},
		},
	}

	return client.New(rpc.WithEndpoint(cfg.RPCURL), rpc.WithHTTPClient(httpClient))
}

// Explorer renders explorer.solana.com links for a cluster.
type Explorer struct {
	Cluster string
}

func (e Explorer) suffix() string {
	switch e.Cluster {
	case "", "mainnet", "mainnet-beta":
		return ""
	default:
		return "?cluster=" + e.Cluster
	}
}

func (e Explorer) Address(address string) string {
	return fmt.Sprintf("https://explorer.solana.com/address/%s%s", address, e.suffix())
}

func (e Explorer) Tx(signature string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s%s", signature, e.suffix())
}
