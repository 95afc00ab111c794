package config

// Config holds all w3drop configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network"`
	DefaultWallet  string              `json:"default_wallet"`
	NetworkMode    string              `json:"network_mode"`  // "mainnet" | "testnet"
	RPCAlgorithm   string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs     map[string][]string `json:"custom_rpcs"`
	Decimals       int                 `json:"decimals"`         // scale applied to human amounts
	ConfirmTimeout int                 `json:"confirm_timeout"`  // seconds, per transaction
	Keyring        string              `json:"keyring,omitempty"` // "" (OS keychain) | "file"

	// internal: config dir path used for Save()
	configDir string
}

// AirdropFile is the structure of airdrop.yaml.
//
//	chains:
//	  11155111:
//	    airdrop_contract: "0x…"
//	  84532:
//	    airdrop_contract: "0x…"
type AirdropFile struct {
	Chains map[int64]AirdropChain `yaml:"chains"`
}

// AirdropChain is one deployment entry in airdrop.yaml.
type AirdropChain struct {
	AirdropContract string `yaml:"airdrop_contract"`
}
