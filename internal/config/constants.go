package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitERC20Approve = uint64(60_000)
	GasLimitContractCall = uint64(200_000)
	// Per recipient on top of GasLimitContractCall for airdropERC20.
	GasLimitPerRecipient = uint64(35_000)
)

// Timeouts.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark / selection
	TxConfirmTimeout = 3 * time.Minute  // one transaction confirmation wait
	ReadTimeout      = 15 * time.Second // allowance / balance / metadata reads
)

// EnvConfigDir overrides the config directory, like --config.
const EnvConfigDir = "W3DROP_CONFIG_DIR"

// EnvRPCURL pins the RPC endpoint and skips selection.
const EnvRPCURL = "W3DROP_RPC_URL"

// AirdropGasLimit is the fallback gas for an airdrop to n recipients.
func AirdropGasLimit(n int) uint64 {
	if n < 0 {
		n = 0
	}
	return GasLimitContractCall + uint64(n)*GasLimitPerRecipient
}
