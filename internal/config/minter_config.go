package config

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix is prepended to every configuration key when read from the environment,
// e.g. solana.rpc_url -> MINTER_SOLANA_RPC_URL.
const EnvPrefix = "MINTER"

type Network string

const (
	NetworkSolana Network = "solana"
	NetworkEVM    Network = "evm"
	NetworkHedera Network = "hedera"
)

type IdentitySource string

const (
	IdentityKeypairFile IdentitySource = "keypair-file"
	IdentityBase58      IdentitySource = "base58"
	IdentityHex         IdentitySource = "hex"
	IdentityMnemonic    IdentitySource = "mnemonic"
	IdentityKeystore    IdentitySource = "keystore"
	IdentityGCPSecret   IdentitySource = "gcp-secret"
)

type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

type Solana struct {
	Cluster    string // devnet, testnet, mainnet-beta; used for explorer links
	RPCURL     string
	Commitment string
	// SessionHeader is sent as x-session-hash on every RPC request when set.
	SessionHeader string
}

type EVM struct {
	RPCURLs     []string
	ChainID     int64
	ExplorerURL string
}

type Hedera struct {
	Network           string
	OperatorAccountID string
}

type Identity struct {
	Source         IdentitySource
	Path           string // keypair or keystore file
	Secret         string // base58 / hex / mnemonic material
	Passphrase     string // optional BIP39 passphrase
	DerivationPath string
	SecretName     string // projects/<p>/secrets/<s>/versions/<v>
	Password       string // keystore password, prompted when empty
}

type Minter struct {
	Network        Network
	Solana         Solana
	EVM            EVM
	Hedera         Hedera
	Identity       Identity
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	MetricsAddr    string
	Logger         Logger
}

var dotenvOnce sync.Once

// LoadDotEnv loads a .env file from the working directory once. Variables
// already present in the environment win.
func LoadDotEnv() {
	dotenvOnce.Do(func() {
		_ = gotenv.Load()
	})
}

// DefaultMinterConfigFromEnv returns the configuration built from defaults and
// MINTER_* environment variables.
func DefaultMinterConfigFromEnv() Minter {
	LoadDotEnv()

	return fromViper(newViper())
}

// LoadMinterConfig is DefaultMinterConfigFromEnv plus an optional config file
// (toml, yaml or json). Environment variables override file values.
func LoadMinterConfig(path string) (Minter, error) {
	LoadDotEnv()

	v := newViper()
	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Minter{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Minter{}, err
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", string(NetworkSolana))
	v.SetDefault("confirm_timeout", "90s")
	v.SetDefault("poll_interval", "2s")
	v.SetDefault("metrics_addr", "")

	v.SetDefault("solana.cluster", "devnet")
	v.SetDefault("solana.rpc_url", "https://api.devnet.solana.com")
	v.SetDefault("solana.commitment", "finalized")
	v.SetDefault("solana.session_header", "")

	v.SetDefault("evm.rpc_urls", "")
	v.SetDefault("evm.chain_id", 97) //nolint:mnd // BSC testnet
	v.SetDefault("evm.explorer_url", "https://testnet.bscscan.com")

	v.SetDefault("hedera.network", "testnet")
	v.SetDefault("hedera.operator_account_id", "")

	v.SetDefault("identity.source", string(IdentityKeypairFile))
	v.SetDefault("identity.path", "~/.config/solana/id.json")
	v.SetDefault("identity.secret", "")
	v.SetDefault("identity.passphrase", "")
	v.SetDefault("identity.derivation_path", "m/44'/60'/0'/0/0")
	v.SetDefault("identity.secret_name", "")
	v.SetDefault("identity.password", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty_print_console", true)

	return v
}

func fromViper(v *viper.Viper) Minter {
	level, err := zerolog.ParseLevel(v.GetString("logger.level"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	return Minter{
		Network:        Network(strings.ToLower(strings.TrimSpace(v.GetString("network")))),
		ConfirmTimeout: v.GetDuration("confirm_timeout"),
		PollInterval:   v.GetDuration("poll_interval"),
		MetricsAddr:    v.GetString("metrics_addr"),
		Solana: Solana{
			Cluster:       v.GetString("solana.cluster"),
			RPCURL:        strings.TrimSpace(v.GetString("solana.rpc_url")),
			Commitment:    v.GetString("solana.commitment"),
			SessionHeader: v.GetString("solana.session_header"),
		},
		EVM: EVM{
			RPCURLs:     ParseRPCURLs(v.GetString("evm.rpc_urls")),
			ChainID:     v.GetInt64("evm.chain_id"),
			ExplorerURL: strings.TrimRight(v.GetString("evm.explorer_url"), "/"),
		},
		Hedera: Hedera{
			Network:           v.GetString("hedera.network"),
			OperatorAccountID: strings.TrimSpace(v.GetString("hedera.operator_account_id")),
		},
		Identity: Identity{
			Source:         IdentitySource(strings.ToLower(v.GetString("identity.source"))),
			Path:           v.GetString("identity.path"),
			Secret:         v.GetString("identity.secret"),
			Passphrase:     v.GetString("identity.passphrase"),
			DerivationPath: v.GetString("identity.derivation_path"),
			SecretName:     v.GetString("identity.secret_name"),
			Password:       v.GetString("identity.password"),
		},
		Logger: Logger{
			Level:              level,
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
	}
}

// ParseRPCURLs splits a comma separated list of RPC URLs, dropping blanks.
func ParseRPCURLs(rpcURL string) []string {
	if rpcURL == "" {
		return nil
	}

	urls := strings.Split(rpcURL, ",")
	result := make([]string, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" {
			result = append(result, url)
		}
	}

	return result
}

// Validate checks the settings required by the selected network.
func (m Minter) Validate() error {
	if m.ConfirmTimeout <= 0 {
		return errors.New("confirm timeout must be positive")
	}
	if m.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}

	switch m.Network {
	case NetworkSolana:
		if m.Solana.RPCURL == "" {
			return errors.New("solana rpc url is required")
		}
		switch m.Solana.Commitment {
		case "processed", "confirmed", "finalized":
		default:
			return errors.Errorf("unsupported solana commitment %q", m.Solana.Commitment)
		}
	case NetworkEVM:
		if len(m.EVM.RPCURLs) == 0 {
			return errors.New("at least one evm rpc url is required")
		}
		if m.EVM.ChainID <= 0 {
			return errors.New("evm chain id must be positive")
		}
	case NetworkHedera:
		if m.Hedera.OperatorAccountID == "" {
			return errors.New("hedera operator account id is required")
		}
	default:
		return errors.Errorf("unsupported network %q", m.Network)
	}

	switch m.Identity.Source {
	case IdentityKeypairFile, IdentityKeystore:
		if strings.TrimSpace(m.Identity.Path) == "" {
			return errors.Errorf("identity path is required for source %s", m.Identity.Source)
		}
	case IdentityBase58, IdentityHex, IdentityMnemonic:
		if strings.TrimSpace(m.Identity.Secret) == "" {
			return errors.Errorf("identity secret is required for source %s", m.Identity.Source)
		}
	case IdentityGCPSecret:
		if strings.TrimSpace(m.Identity.SecretName) == "" {
			return errors.New("identity secret name is required for source gcp-secret")
		}
	default:
		return errors.Errorf("unsupported identity source %q", m.Identity.Source)
	}

	return nil
}

// Redacted returns a copy safe to print.
func (m Minter) Redacted() Minter {
	const mask = "********"

	out := m
	if out.Identity.Secret != "" {
		out.Identity.Secret = mask
	}
	if out.Identity.Passphrase != "" {
		out.Identity.Passphrase = mask
	}
	if out.Identity.Password != "" {
		out.Identity.Password = mask
	}
	out.EVM.RPCURLs = append([]string(nil), m.EVM.RPCURLs...)

	return out
}
