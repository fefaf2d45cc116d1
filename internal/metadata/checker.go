// Package metadata verifies off-chain token metadata before it is minted.
package metadata

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/minter"
	"github/chapool/nft-minter/internal/util"
)

const (
	DefaultTimeout     = 15 * time.Second
	DefaultIPFSGateway = "https://ipfs.io/ipfs/"
)

var (
	ErrUnreachable = errors.New("metadata is unreachable")
	ErrInvalid     = errors.New("metadata is invalid")
)

// Document is the subset of the Metaplex / OpenSea metadata JSON that is checked.
type Document struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image"`
}

type Checker struct {
	client      *resty.Client
	ipfsGateway string
}

type Option func(*Checker)

// WithIPFSGateway sets the HTTP gateway ipfs:// locators are resolved through.
func WithIPFSGateway(gateway string) Option {
	return func(c *Checker) {
		if !strings.HasSuffix(gateway, "/") {
			gateway += "/"
		}
		c.ipfsGateway = gateway
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Checker) {
		c.client = resty.NewWithClient(hc).SetTimeout(hc.Timeout)
	}
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:      resty.New().SetTimeout(DefaultTimeout),
		ipfsGateway: DefaultIPFSGateway,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client.SetHeader("Accept", "application/json")

	return c
}

func (c *Checker) resolve(uri string) string {
	if rest, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return c.ipfsGateway + strings.TrimPrefix(rest, "ipfs/")
	}

	return uri
}

// Check fetches uri and requires a JSON object with a name and an image.
func (c *Checker) Check(ctx context.Context, uri string) (Document, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.resolve(uri))
	if err != nil {
		return Document{}, errors.Wrapf(ErrUnreachable, "%s: %v", uri, err)
	}
	if resp.IsError() {
		return Document{}, errors.Wrapf(ErrUnreachable, "%s: status %d", uri, resp.StatusCode())
	}

	var doc Document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return Document{}, errors.Wrapf(ErrInvalid, "%s: %v", uri, err)
	}
	if strings.TrimSpace(doc.Name) == "" {
		return Document{}, errors.Wrapf(ErrInvalid, "%s: missing name", uri)
	}
	if strings.TrimSpace(doc.Image) == "" {
		return Document{}, errors.Wrapf(ErrInvalid, "%s: missing image", uri)
	}

	return doc, nil
}

// CheckAll checks the metadata of every item in order and stops at the first failure.
func (c *Checker) CheckAll(ctx context.Context, items []minter.Item) error {
	log := util.LogFromContext(ctx).With().Str("component", "metadata_checker").Logger()

	for i, item := range items {
		doc, err := c.Check(ctx, item.MetadataURI)
		if err != nil {
			return errors.Wrapf(err, "item %d", i)
		}

		log.Debug().Int("item", i).Str("uri", item.MetadataURI).Str("name", doc.Name).Msg("Metadata verified")
	}

	log.Info().Int("items", len(items)).Msg("All metadata verified")

	return nil
}
