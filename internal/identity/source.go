package identity

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/nft-minter/internal/config"
	"github/chapool/nft-minter/internal/util"
)

type loadOptions struct {
	prompt   PasswordPrompt
	accessor SecretAccessor
}

type Option func(*loadOptions)

// WithPasswordPrompt replaces the terminal prompt used to unlock keystores.
func WithPasswordPrompt(prompt PasswordPrompt) Option {
	return func(o *loadOptions) {
		o.prompt = prompt
	}
}

// WithSecretAccessor replaces the Secret Manager client.
func WithSecretAccessor(accessor SecretAccessor) Option {
	return func(o *loadOptions) {
		o.accessor = accessor
	}
}

// CurveFor returns the key curve used to sign for network.
func CurveFor(network config.Network) (Curve, error) {
	switch network {
	case config.NetworkSolana:
		return CurveEd25519, nil
	case config.NetworkEVM, config.NetworkHedera:
		return CurveSecp256k1, nil
	default:
		return "", errors.Errorf("unsupported network %q", network)
	}
}

// Load resolves the configured identity source into an initialized Holder.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func Load(ctx context.Context, cfg config.Identity, curve Curve, opts ...Option) (Holder, error) {
	o := loadOptions{prompt: PromptPassword}
	for _, opt := range opts {
		opt(&o)
	}

	log := util.LogFromContext(ctx).With().
		Str("component", "identity").
		Str("source", string(cfg.Source)).
		Logger()

	key, err := loadKey(ctx, cfg, curve, o)
	if err != nil {
		return nil, err
	}
	defer key.wipe()

	if key.Curve != curve {
		return nil, errors.Wrapf(ErrUnsupportedCurve, "identity source %s produced %s key, network needs %s", cfg.Source, key.Curve, curve)
	}

	h := NewHolder()
	if err := h.Initialize(key); err != nil {
		return nil, err
	}

	address, err := h.Address()
	if err != nil {
		h.Clear()
		return nil, err
	}

	log.Info().Str("address", address).Msg("Identity loaded")

	return h, nil
}

func loadKey(ctx context.Context, cfg config.Identity, curve Curve, o loadOptions) (Key, error) {
	switch cfg.Source {
	case config.IdentityKeypairFile:
		data, err := os.ReadFile(expandHome(cfg.Path))
		if err != nil {
			return Key{}, errors.Wrapf(err, "failed to read keypair file %s", cfg.Path)
		}
		return ParseKeypairJSON(data)
	case config.IdentityBase58:
		return ParseBase58(cfg.Secret)
	case config.IdentityHex:
		return ParseHex(cfg.Secret, curve)
	case config.IdentityMnemonic:
		return KeyFromMnemonic(cfg.Secret, cfg.Passphrase, cfg.DerivationPath, curve)
	case config.IdentityKeystore:
		ks, err := ReadKeystoreFile(cfg.Path)
		if err != nil {
			return Key{}, err
		}
		password := cfg.Password
		if password == "" {
			if password, err = o.prompt("Enter keystore password: "); err != nil {
				return Key{}, errors.Wrap(err, "failed to read password")
			}
		}
		key, err := DecryptKey(ks, password)
		if err != nil {
			return Key{}, errors.Wrap(err, "failed to decrypt keystore (invalid password?)")
		}
		return key, nil
	case config.IdentityGCPSecret:
		accessor := o.accessor
		if accessor == nil {
			client, err := newSecretManagerClient(ctx)
			if err != nil {
				return Key{}, err
			}
			defer client.Close()
			accessor = client
		}
		secret, err := FetchSecret(ctx, accessor, cfg.SecretName)
		if err != nil {
			return Key{}, err
		}
		return ParseSecret(secret, curve)
	default:
		return Key{}, errors.Errorf("unsupported identity source %q", cfg.Source)
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}
