package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

const (
	defaultNetwork   = "anvil"
	defaultMode      = "mainnet"
	defaultAlgorithm = "fastest"
	defaultDecimals  = 18

	configFile  = "config.json"
	walletsFile = "wallets.json"
	keyringDir  = "keys"
)

// DefaultDir returns W3DROP_CONFIG_DIR when set, else ~/.w3drop.
func DefaultDir() (string, error) {
	if d := os.Getenv(EnvConfigDir); d != "" {
		return d, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home dir: %w", err)
	}
	return filepath.Join(home, ".w3drop"), nil
}

// Load reads config from dir (or creates defaults). An empty dir means DefaultDir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	data, err := os.ReadFile(filepath.Join(dir, configFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	if c.NetworkMode != "mainnet" && c.NetworkMode != "testnet" {
		return fmt.Errorf("invalid network_mode %q (mainnet|testnet)", c.NetworkMode)
	}
	switch c.RPCAlgorithm {
	case "fastest", "round-robin", "failover":
	default:
		return fmt.Errorf("invalid rpc_algorithm %q (fastest|round-robin|failover)", c.RPCAlgorithm)
	}
	if c.Decimals < 0 || c.Decimals > 255 {
		return fmt.Errorf("invalid decimals %d (0-255)", c.Decimals)
	}
	if c.ConfirmTimeout < 0 {
		return fmt.Errorf("invalid confirm_timeout %d", c.ConfirmTimeout)
	}
	if c.Keyring != "" && c.Keyring != "file" {
		return fmt.Errorf("invalid keyring %q (file or empty)", c.Keyring)
	}
	return nil
}

// Keys lists the settings Set accepts.
var Keys = []string{
	"default_network",
	"default_wallet",
	"network_mode",
	"rpc_algorithm",
	"decimals",
	"confirm_timeout",
	"keyring",
}

// Set assigns a setting by its JSON key and validates the result. The config
// is left unchanged when the value is rejected.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "default_network":
		next.DefaultNetwork = value
	case "default_wallet":
		next.DefaultWallet = value
	case "network_mode":
		next.NetworkMode = value
	case "rpc_algorithm":
		next.RPCAlgorithm = value
	case "decimals", "confirm_timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		if key == "decimals" {
			next.Decimals = n
		} else {
			next.ConfirmTimeout = n
		}
	case "keyring":
		next.Keyring = value
	default:
		return fmt.Errorf("unknown config key %q (one of %v)", key, Keys)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a chain.
func (c *Config) AddRPC(chain, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[chain], url) {
		return fmt.Errorf("RPC %s already exists for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = append(c.CustomRPCs[chain], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a chain.
func (c *Config) RemoveRPC(chain, url string) error {
	rpcs := c.CustomRPCs[chain]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for chain %s", url, chain)
	}
	c.CustomRPCs[chain] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a chain.
func (c *Config) GetRPCs(chain string) []string {
	return c.CustomRPCs[chain]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is where the wallet store lives.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// KeyringDir is where the file keyring keeps encrypted keys.
func (c *Config) KeyringDir() string {
	return filepath.Join(c.configDir, keyringDir)
}

// TxTimeout is the per-transaction confirmation wait.
func (c *Config) TxTimeout() time.Duration {
	if c.ConfirmTimeout > 0 {
		return time.Duration(c.ConfirmTimeout) * time.Second
	}
	return TxConfirmTimeout
}

func defaults(dir string) *Config {
	return &Config{
		DefaultNetwork: defaultNetwork,
		NetworkMode:    defaultMode,
		RPCAlgorithm:   defaultAlgorithm,
		Decimals:       defaultDecimals,
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}
