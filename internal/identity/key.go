package identity

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

// Curve is the signature scheme a key belongs to.
type Curve string

const (
	// CurveEd25519 keys are stored as the 64 byte keypair (seed || public key).
	CurveEd25519 Curve = "ed25519"
	// CurveSecp256k1 keys are stored as the 32 byte private scalar.
	CurveSecp256k1 Curve = "secp256k1"
)

const (
	ed25519KeypairLength   = 64
	ed25519SeedLength      = 32
	secp256k1PrivateLength = 32
)

var (
	ErrUnsupportedCurve = errors.New("unsupported curve")
	ErrInvalidKey       = errors.New("invalid key material")
)

// Key is raw signing key material tagged with its curve.
type Key struct {
	Curve Curve
	Bytes []byte
}

func (k Key) clone() Key {
	b := make([]byte, len(k.Bytes))
	copy(b, k.Bytes)

	return Key{Curve: k.Curve, Bytes: b}
}

func (k Key) wipe() {
	for i := range k.Bytes {
		k.Bytes[i] = 0
	}
}

// Validate checks the key length and that it parses for its curve.
func (k Key) Validate() error {
	switch k.Curve {
	case CurveEd25519:
		if len(k.Bytes) != ed25519KeypairLength {
			return errors.Wrapf(ErrInvalidKey, "ed25519 keypair must be %d bytes, got %d", ed25519KeypairLength, len(k.Bytes))
		}
		if _, err := types.AccountFromBytes(k.Bytes); err != nil {
			return errors.Wrap(ErrInvalidKey, err.Error())
		}
	case CurveSecp256k1:
		if len(k.Bytes) != secp256k1PrivateLength {
			return errors.Wrapf(ErrInvalidKey, "secp256k1 key must be %d bytes, got %d", secp256k1PrivateLength, len(k.Bytes))
		}
		if _, err := crypto.ToECDSA(k.Bytes); err != nil {
			return errors.Wrap(ErrInvalidKey, err.Error())
		}
	default:
		return errors.Wrapf(ErrUnsupportedCurve, "%q", k.Curve)
	}

	return nil
}

// Address returns the public address for the key: base58 public key for
// ed25519, checksummed 0x address for secp256k1.
func (k Key) Address() (string, error) {
	switch k.Curve {
	case CurveEd25519:
		acc, err := k.SolanaAccount()
		if err != nil {
			return "", err
		}
		return acc.PublicKey.ToBase58(), nil
	case CurveSecp256k1:
		priv, err := k.ECDSA()
		if err != nil {
			return "", err
		}
		publicKeyECDSA, ok := priv.Public().(*ecdsa.PublicKey)
		if !ok {
			return "", errors.New("failed to cast public key to ECDSA")
		}
		return crypto.PubkeyToAddress(*publicKeyECDSA).Hex(), nil
	default:
		return "", errors.Wrapf(ErrUnsupportedCurve, "%q", k.Curve)
	}
}

// SolanaAccount converts an ed25519 key into a blocto account.
func (k Key) SolanaAccount() (types.Account, error) {
	if k.Curve != CurveEd25519 {
		return types.Account{}, errors.Wrapf(ErrUnsupportedCurve, "solana account needs ed25519, got %s", k.Curve)
	}

	acc, err := types.AccountFromBytes(k.Bytes)
	if err != nil {
		return types.Account{}, errors.Wrap(err, "failed to build solana account")
	}

	return acc, nil
}

// ECDSA converts a secp256k1 key into a go-ethereum private key.
func (k Key) ECDSA() (*ecdsa.PrivateKey, error) {
	if k.Curve != CurveSecp256k1 {
		return nil, errors.Wrapf(ErrUnsupportedCurve, "ecdsa key needs secp256k1, got %s", k.Curve)
	}

	priv, err := crypto.ToECDSA(k.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	return priv, nil
}

// ParseKeypairJSON parses the solana-keygen file format: a JSON array of 64 bytes.
func ParseKeypairJSON(data []byte) (Key, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return Key{}, errors.Wrap(ErrInvalidKey, "keypair is not a json int array")
	}

	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return Key{}, errors.Wrapf(ErrInvalidKey, "byte out of range at %d: %d", i, v)
		}
		b[i] = byte(v)
	}

	key := Key{Curve: CurveEd25519, Bytes: b}
	if err := key.Validate(); err != nil {
		return Key{}, err
	}

	return key, nil
}

// ParseBase58 parses a base58 encoded ed25519 keypair as exported by wallets.
func ParseBase58(secret string) (Key, error) {
	b, err := base58.Decode(strings.TrimSpace(secret))
	if err != nil {
		return Key{}, errors.Wrap(ErrInvalidKey, "secret is not base58")
	}

	if len(b) == ed25519SeedLength {
		acc, err := types.AccountFromSeed(b)
		if err != nil {
			return Key{}, errors.Wrap(ErrInvalidKey, err.Error())
		}
		b = acc.PrivateKey
	}

	key := Key{Curve: CurveEd25519, Bytes: b}
	if err := key.Validate(); err != nil {
		return Key{}, err
	}

	return key, nil
}

// ParseHex parses a hex encoded key, with or without 0x prefix. 32 bytes are
// read as the given curve; 64 bytes are always an ed25519 keypair.
func ParseHex(secret string, curve Curve) (Key, error) {
	s := strings.TrimPrefix(strings.TrimSpace(secret), "0x")

	b, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, errors.Wrap(ErrInvalidKey, "secret is not hex")
	}

	key := Key{Curve: curve, Bytes: b}
	switch {
	case len(b) == ed25519KeypairLength:
		key.Curve = CurveEd25519
	case len(b) == ed25519SeedLength && curve == CurveEd25519:
		acc, err := types.AccountFromSeed(b)
		if err != nil {
			return Key{}, errors.Wrap(ErrInvalidKey, err.Error())
		}
		key.Bytes = acc.PrivateKey
	}

	if err := key.Validate(); err != nil {
		return Key{}, err
	}

	return key, nil
}

// ParseSecret accepts any of the textual formats: JSON byte array, hex, base58.
func ParseSecret(secret string, curve Curve) (Key, error) {
	s := strings.TrimSpace(secret)

	switch {
	case strings.HasPrefix(s, "["):
		return ParseKeypairJSON([]byte(s))
	case strings.HasPrefix(s, "0x") || isHex(s):
		return ParseHex(s, curve)
	default:
		return ParseBase58(s)
	}
}

func isHex(s string) bool {
	if s == "" || len(s)%2 != 0 {
		return false
	}
	_, err := hex.DecodeString(s)

	return err == nil
}
