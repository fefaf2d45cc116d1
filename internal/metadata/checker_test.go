package metadata_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/metadata"
	"github/chapool/nft-minter/internal/minter"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"NFT1","symbol":"VT","image":"https://example.com/1.png"}`))
	})
	mux.HandleFunc("/noimage.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"NFT1"}`))
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html></html>`))
	})
	mux.HandleFunc("/ipfs/QmHash", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"IPFS","image":"ipfs://QmImage"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func TestCheck(t *testing.T) {
	srv := newServer(t)
	checker := metadata.NewChecker(metadata.WithHTTPClient(srv.Client()), metadata.WithIPFSGateway(srv.URL+"/ipfs"))

	doc, err := checker.Check(t.Context(), srv.URL+"/ok.json")
	require.NoError(t, err)
	assert.Equal(t, "NFT1", doc.Name)
	assert.Equal(t, "VT", doc.Symbol)

	doc, err = checker.Check(t.Context(), "ipfs://QmHash")
	require.NoError(t, err)
	assert.Equal(t, "IPFS", doc.Name)

	_, err = checker.Check(t.Context(), srv.URL+"/noimage.json")
	require.ErrorIs(t, err, metadata.ErrInvalid)

	_, err = checker.Check(t.Context(), srv.URL+"/garbage")
	require.ErrorIs(t, err, metadata.ErrInvalid)

	_, err = checker.Check(t.Context(), srv.URL+"/missing.json")
	require.ErrorIs(t, err, metadata.ErrUnreachable)
}

func TestCheckAllStopsAtFirstFailure(t *testing.T) {
	srv := newServer(t)
	checker := metadata.NewChecker(metadata.WithHTTPClient(srv.Client()))

	err := checker.CheckAll(t.Context(), []minter.Item{
		{Collection: "c1", MetadataURI: srv.URL + "/ok.json"},
		{Collection: "c2", MetadataURI: srv.URL + "/missing.json"},
		{Collection: "c3", MetadataURI: srv.URL + "/garbage"},
	})
	require.ErrorIs(t, err, metadata.ErrUnreachable)
	assert.Contains(t, err.Error(), "item 1")

	require.NoError(t, checker.CheckAll(t.Context(), []minter.Item{{MetadataURI: srv.URL + "/ok.json"}}))
}
