package identity

import (
	"crypto/sha512"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// SeedFromMnemonic converts a BIP39 mnemonic to its 64 byte seed:
// PBKDF2(mnemonic, "mnemonic"+passphrase, 2048, 64, SHA512).
func SeedFromMnemonic(mnemonic string, passphrase string) ([]byte, error) {
	normalized := strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(normalized) {
		return nil, ErrInvalidMnemonic
	}

	const (
		pbkdf2Iterations = 2048
		pbkdf2KeyLength  = 64
	)

	return pbkdf2.Key(
		[]byte(normalized),
		[]byte("mnemonic"+passphrase),
		pbkdf2Iterations,
		pbkdf2KeyLength,
		sha512.New,
	), nil
}

// NewMnemonic generates a fresh 24 word mnemonic.
func NewMnemonic() (string, error) {
	const entropyBits = 256

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}

	return mnemonic, nil
}

// KeyFromMnemonic derives the signing key for curve. secp256k1 keys follow
// the BIP44 path; ed25519 keys use the first 32 seed bytes, matching
// solana-keygen recover without a derivation path.
func KeyFromMnemonic(mnemonic string, passphrase string, path string, curve Curve) (Key, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return Key{}, err
	}
	defer func() {
		for i := range seed {
			seed[i] = 0
		}
	}()

	switch curve {
	case CurveEd25519:
		acc, err := types.AccountFromSeed(seed[:ed25519SeedLength])
		if err != nil {
			return Key{}, errors.Wrap(err, "failed to derive ed25519 account")
		}
		return Key{Curve: CurveEd25519, Bytes: acc.PrivateKey}, nil
	case CurveSecp256k1:
		priv, err := derivePrivateKey(seed, path)
		if err != nil {
			return Key{}, err
		}
		return Key{Curve: CurveSecp256k1, Bytes: priv}, nil
	default:
		return Key{}, errors.Wrapf(ErrUnsupportedCurve, "%q", curve)
	}
}

func derivePrivateKey(seed []byte, path string) ([]byte, error) {
	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	indices, err := ParseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP44 path")
	}

	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key.Key, nil
}

// ParseBIP44Path parses a path such as "m/44'/60'/0'/0/0" into child indices,
// hardened segments offset by bip32.FirstHardenedChild.
func ParseBIP44Path(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != 'm' {
		return nil, errors.Errorf("invalid BIP44 path: %s", path)
	}

	parts := strings.Split(strings.TrimPrefix(strings.TrimPrefix(path, "m"), "/"), "/")
	indices := make([]uint32, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		part = strings.TrimRight(part, "'h")

		var index uint32
		if _, err := fmt.Sscanf(part, "%d", &index); err != nil {
			return nil, errors.Errorf("invalid path segment: %s", part)
		}
		if index >= bip32.FirstHardenedChild {
			return nil, errors.Errorf("path segment out of range: %s", part)
		}

		if hardened {
			index += bip32.FirstHardenedChild
		}

		indices = append(indices, index)
	}

	return indices, nil
}
