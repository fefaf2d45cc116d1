package identity_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/googleapis/gax-go/v2"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/identity"
)

const (
	//nolint:dupword // Test mnemonic with repeated words
	hardhatMnemonic = "test test test test test test test test test test test junk"
	hardhatKey      = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddress  = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	defaultEVMPath  = "m/44'/60'/0'/0/0"
)

func keypairJSON(t *testing.T, acc types.Account) []byte {
	t.Helper()

	ints := make([]int, len(acc.PrivateKey))
	for i, b := range acc.PrivateKey {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	require.NoError(t, err)

	return data
}

func TestParseKeypairJSON(t *testing.T) {
	acc := types.NewAccount()

	key, err := identity.ParseKeypairJSON(keypairJSON(t, acc))
	require.NoError(t, err)
	assert.Equal(t, identity.CurveEd25519, key.Curve)

	address, err := key.Address()
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey.ToBase58(), address)

	_, err = identity.ParseKeypairJSON([]byte("[1,2,3]"))
	assert.True(t, errors.Is(err, identity.ErrInvalidKey))

	_, err = identity.ParseKeypairJSON([]byte("[300]"))
	assert.True(t, errors.Is(err, identity.ErrInvalidKey))
}

func TestParseBase58(t *testing.T) {
	acc := types.NewAccount()

	key, err := identity.ParseBase58(base58.Encode(acc.PrivateKey))
	require.NoError(t, err)

	address, err := key.Address()
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey.ToBase58(), address)

	_, err = identity.ParseBase58("0OIl")
	assert.Error(t, err)
}

func TestParseHexSecp256k1(t *testing.T) {
	key, err := identity.ParseHex(hardhatKey, identity.CurveSecp256k1)
	require.NoError(t, err)

	address, err := key.Address()
	require.NoError(t, err)
	assert.Equal(t, hardhatAddress, address)
}

func TestParseSecretDetectsFormat(t *testing.T) {
	acc := types.NewAccount()

	fromJSON, err := identity.ParseSecret(string(keypairJSON(t, acc)), identity.CurveEd25519)
	require.NoError(t, err)
	fromBase58, err := identity.ParseSecret(base58.Encode(acc.PrivateKey), identity.CurveEd25519)
	require.NoError(t, err)
	fromHex, err := identity.ParseSecret(hardhatKey, identity.CurveSecp256k1)
	require.NoError(t, err)

	assert.Equal(t, fromJSON.Bytes, fromBase58.Bytes)
	assert.Equal(t, identity.CurveSecp256k1, fromHex.Curve)
}

func TestKeyFromMnemonic(t *testing.T) {
	key, err := identity.KeyFromMnemonic(hardhatMnemonic, "", defaultEVMPath, identity.CurveSecp256k1)
	require.NoError(t, err)

	address, err := key.Address()
	require.NoError(t, err)
	assert.Equal(t, hardhatAddress, address)

	ed, err := identity.KeyFromMnemonic(hardhatMnemonic, "", "", identity.CurveEd25519)
	require.NoError(t, err)
	assert.Len(t, ed.Bytes, 64)

	_, err = identity.KeyFromMnemonic("not a real mnemonic", "", defaultEVMPath, identity.CurveSecp256k1)
	assert.True(t, errors.Is(err, identity.ErrInvalidMnemonic))
}

func TestNewMnemonic(t *testing.T) {
	mnemonic, err := identity.NewMnemonic()
	require.NoError(t, err)

	_, err = identity.SeedFromMnemonic(mnemonic, "")
	require.NoError(t, err)
}

func TestParseBIP44Path(t *testing.T) {
	indices, err := identity.ParseBIP44Path("m/44'/60'/0'/0/7")
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x8000002c, 0x8000003c, 0x80000000, 0, 7}, indices)

	for _, bad := range []string{"", "44'/60'", "m/x'", "m/2147483648"} {
		_, err := identity.ParseBIP44Path(bad)
		assert.Error(t, err, bad)
	}
}

func TestHolder(t *testing.T) {
	h := identity.NewHolder()
	assert.False(t, h.IsInitialized())

	_, err := h.Key()
	assert.True(t, errors.Is(err, identity.ErrNotInitialized))

	key, err := identity.ParseHex(hardhatKey, identity.CurveSecp256k1)
	require.NoError(t, err)
	require.NoError(t, h.Initialize(key))

	got, err := h.Key()
	require.NoError(t, err)
	got.Bytes[0] ^= 0xff

	address, err := h.Address()
	require.NoError(t, err)
	assert.Equal(t, hardhatAddress, address)

	h.Clear()
	assert.False(t, h.IsInitialized())

	assert.Error(t, h.Initialize(identity.Key{Curve: identity.CurveSecp256k1, Bytes: []byte{1}}))
}

func TestKeystoreRoundTrip(t *testing.T) {
	acc := types.NewAccount()
	key := identity.Key{Curve: identity.CurveEd25519, Bytes: acc.PrivateKey}

	ks, err := identity.EncryptKey(key, "correct horse", identity.LightScryptParams())
	require.NoError(t, err)
	assert.Equal(t, 3, ks.Version)
	assert.Equal(t, acc.PublicKey.ToBase58(), ks.Address)

	path := filepath.Join(t.TempDir(), "keys", "authority.json")
	require.NoError(t, identity.WriteKeystoreFile(path, ks))
	assert.Error(t, identity.WriteKeystoreFile(path, ks), "existing keystore must not be overwritten")

	loaded, err := identity.ReadKeystoreFile(path)
	require.NoError(t, err)

	decrypted, err := identity.DecryptKey(loaded, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, key.Bytes, decrypted.Bytes)
	assert.Equal(t, identity.CurveEd25519, decrypted.Curve)

	_, err = identity.DecryptKey(loaded, "wrong horse")
	assert.True(t, errors.Is(err, identity.ErrInvalidPassword))
}

type fakeSecrets struct {
	name    string
	payload string
}

func (f *fakeSecrets) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.name = req.GetName()
	if f.payload == "" {
		return &secretmanagerpb.AccessSecretVersionResponse{}, nil
	}

	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(f.payload)},
	}, nil
}

func TestLoadFromSecretManager(t *testing.T) {
	acc := types.NewAccount()
	secrets := &fakeSecrets{payload: string(keypairJSON(t, acc))}

	h, err := identity.Load(t.Context(), config.Identity{
		Source:     config.IdentityGCPSecret,
		SecretName: "projects/p/secrets/mint-authority",
	}, identity.CurveEd25519, identity.WithSecretAccessor(secrets))
	require.NoError(t, err)

	assert.Equal(t, "projects/p/secrets/mint-authority/versions/latest", secrets.name)

	address, err := h.Address()
	require.NoError(t, err)
	assert.Equal(t, acc.PublicKey.ToBase58(), address)
}

func TestLoadFromSecretManagerEmptyPayload(t *testing.T) {
	_, err := identity.Load(t.Context(), config.Identity{
		Source:     config.IdentityGCPSecret,
		SecretName: "projects/p/secrets/s/versions/2",
	}, identity.CurveEd25519, identity.WithSecretAccessor(&fakeSecrets{}))
	assert.Error(t, err)
}

func TestLoadKeystorePromptsForPassword(t *testing.T) {
	key, err := identity.ParseHex(hardhatKey, identity.CurveSecp256k1)
	require.NoError(t, err)

	ks, err := identity.EncryptKey(key, "s3cret-pass", identity.LightScryptParams())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "evm.json")
	require.NoError(t, identity.WriteKeystoreFile(path, ks))

	prompted := 0
	h, err := identity.Load(t.Context(), config.Identity{Source: config.IdentityKeystore, Path: path},
		identity.CurveSecp256k1,
		identity.WithPasswordPrompt(func(string) (string, error) {
			prompted++
			return "s3cret-pass", nil
		}))
	require.NoError(t, err)
	assert.Equal(t, 1, prompted)

	address, err := h.Address()
	require.NoError(t, err)
	assert.Equal(t, hardhatAddress, address)
}

func TestLoadKeypairFile(t *testing.T) {
	acc := types.NewAccount()
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, keypairJSON(t, acc), 0o600))

	h, err := identity.Load(t.Context(), config.Identity{Source: config.IdentityKeypairFile, Path: path}, identity.CurveEd25519)
	require.NoError(t, err)
	assert.True(t, h.IsInitialized())

	_, err = identity.Load(t.Context(), config.Identity{Source: config.IdentityKeypairFile, Path: path}, identity.CurveSecp256k1)
	assert.True(t, errors.Is(err, identity.ErrUnsupportedCurve))
}

func TestPromptNewPassword(t *testing.T) {
	answers := []string{"longenough", "longenough"}
	prompt := func(string) (string, error) {
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}

	password, err := identity.PromptNewPassword(prompt)
	require.NoError(t, err)
	assert.Equal(t, "longenough", password)

	_, err = identity.PromptNewPassword(func(string) (string, error) { return "short", nil })
	assert.Error(t, err)

	mismatch := []string{"longenough", "different1"}
	_, err = identity.PromptNewPassword(func(string) (string, error) {
		a := mismatch[0]
		mismatch = mismatch[1:]
		return a, nil
	})
	assert.Error(t, err)
}

func TestCurveFor(t *testing.T) {
	c, err := identity.CurveFor(config.NetworkSolana)
	require.NoError(t, err)
	assert.Equal(t, identity.CurveEd25519, c)

	c, err = identity.CurveFor(config.NetworkEVM)
	require.NoError(t, err)
	assert.Equal(t, identity.CurveSecp256k1, c)

	_, err = identity.CurveFor("cosmos")
	assert.Error(t, err)
}
