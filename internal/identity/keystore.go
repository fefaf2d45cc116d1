package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	keystoreVersion = 3
	keystoreCipher  = "aes-128-ctr"
	keystoreKDF     = "scrypt"
)

var ErrInvalidPassword = errors.New("invalid password: MAC mismatch")

// KeystoreJSON is the Ethereum keystore v3 layout. The curve field is an
// extension so ed25519 keypairs can share the same file format.
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Address string `json:"address,omitempty"`
	Curve   Curve  `json:"curve"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters.
type ScryptParams struct {
	DKLen int
	N     int
	R     int
	P     int
}

// DefaultScryptParams returns the standard keystore v3 parameters (N=2^18).
func DefaultScryptParams() ScryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 262144
		scryptR     = 8
		scryptP     = 1
	)

	return ScryptParams{DKLen: scryptDKLen, N: scryptN, R: scryptR, P: scryptP}
}

// LightScryptParams trades KDF strength for speed (N=2^12).
func LightScryptParams() ScryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 4096
		scryptR     = 8
		scryptP     = 6
	)

	return ScryptParams{DKLen: scryptDKLen, N: scryptN, R: scryptR, P: scryptP}
}

// EncryptKey seals key with password.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func EncryptKey(key Key, password string, params ScryptParams) (*KeystoreJSON, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	address, err := key.Address()
	if err != nil {
		return nil, err
	}

	//nolint:mnd // 32 is the standard salt size for scrypt
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	ciphertext, err := aes128CTR(derivedKey[:16], iv, key.Bytes)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt key")
	}

	ks := &KeystoreJSON{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
		Address: address,
		Curve:   key.Curve,
	}

	ks.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	ks.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	ks.Crypto.Cipher = keystoreCipher
	ks.Crypto.KDF = keystoreKDF
	ks.Crypto.KDFParams.DKLen = params.DKLen
	ks.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	ks.Crypto.KDFParams.N = params.N
	ks.Crypto.KDFParams.R = params.R
	ks.Crypto.KDFParams.P = params.P
	ks.Crypto.MAC = hex.EncodeToString(calculateMAC(derivedKey[16:32], ciphertext))

	return ks, nil
}

// DecryptKey opens a keystore with password.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func DecryptKey(ks *KeystoreJSON, password string) (Key, error) {
	if ks.Version != keystoreVersion {
		return Key{}, errors.Errorf("unsupported keystore version %d", ks.Version)
	}
	if ks.Crypto.Cipher != keystoreCipher || ks.Crypto.KDF != keystoreKDF {
		return Key{}, errors.Errorf("unsupported keystore cipher %s/%s", ks.Crypto.Cipher, ks.Crypto.KDF)
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return Key{}, errors.Wrap(err, "failed to decode salt")
	}

	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return Key{}, errors.Wrap(err, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return Key{}, errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return Key{}, errors.Wrap(err, "failed to decode MAC")
	}

	p := ks.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return Key{}, errors.Wrap(err, "failed to derive key")
	}

	if subtle.ConstantTimeCompare(calculateMAC(derivedKey[16:32], ciphertext), expectedMAC) != 1 {
		return Key{}, ErrInvalidPassword
	}

	plaintext, err := aes128CTR(derivedKey[:16], iv, ciphertext)
	if err != nil {
		return Key{}, errors.Wrap(err, "failed to decrypt key")
	}

	curve := ks.Curve
	if curve == "" {
		curve = CurveSecp256k1
	}

	key := Key{Curve: curve, Bytes: plaintext}
	if err := key.Validate(); err != nil {
		return Key{}, err
	}

	return key, nil
}

// ReadKeystoreFile loads a keystore JSON file.
func ReadKeystoreFile(path string) (*KeystoreJSON, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keystore %s", path)
	}

	var ks KeystoreJSON
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	return &ks, nil
}

// WriteKeystoreFile stores ks at path with owner-only permissions. An existing
// file is never overwritten.
func WriteKeystoreFile(path string, ks *KeystoreJSON) error {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal keystore JSON")
	}

	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create keystore directory")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return errors.Wrapf(err, "failed to create keystore %s", path)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "failed to write keystore")
	}

	return nil
}

//nolint:varnamelen // iv is a common abbreviation for initialization vector
func aes128CTR(key []byte, iv []byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)

	return out, nil
}

// calculateMAC is Keccak256(derivedKey[16:32] || ciphertext).
func calculateMAC(key []byte, ciphertext []byte) []byte {
	return crypto.Keccak256(key, ciphertext)
}
