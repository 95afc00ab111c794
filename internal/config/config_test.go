package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "anvil", cfg.DefaultNetwork)
	assert.Equal(t, "mainnet", cfg.NetworkMode)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 18, cfg.Decimals)
	assert.Equal(t, config.TxConfirmTimeout, cfg.TxTimeout())
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "base"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "round-robin"
	cfg.ConfirmTimeout = 30
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "base", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, 30*time.Second, reloaded.TxTimeout())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"mode":      `{"network_mode":"devnet","rpc_algorithm":"fastest"}`,
		"algorithm": `{"network_mode":"mainnet","rpc_algorithm":"random"}`,
		"decimals":  `{"network_mode":"mainnet","rpc_algorithm":"fastest","decimals":300}`,
		"keyring":   `{"network_mode":"mainnet","rpc_algorithm":"fastest","keyring":"vault"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o600))
			_, err := config.Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestSet(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.Set("network_mode", "testnet"))
	require.NoError(t, cfg.Set("decimals", "6"))
	require.NoError(t, cfg.Set("confirm_timeout", "45"))
	assert.Equal(t, "testnet", cfg.NetworkMode)
	assert.Equal(t, 6, cfg.Decimals)
	assert.Equal(t, 45*time.Second, cfg.TxTimeout())
}

func TestSetRejectsBadValues(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, cfg.Set("network_mode", "devnet"))
	assert.Error(t, cfg.Set("decimals", "six"))
	assert.Error(t, cfg.Set("decimals", "300"))
	assert.Error(t, cfg.Set("price_currency", "usd"))
	assert.Equal(t, "mainnet", cfg.NetworkMode)
	assert.Equal(t, 18, cfg.Decimals)
}

func TestLoadMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{`), 0o600))
	_, err := config.Load(dir)
	assert.ErrorContains(t, err, "parsing config")
}

func TestDefaultDirEnvOverride(t *testing.T) {
	t.Setenv(config.EnvConfigDir, "/tmp/w3drop-test")
	dir, err := config.DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/w3drop-test", dir)
}

func TestCustomRPCs(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("sepolia", "https://rpc1"))
	require.NoError(t, cfg.AddRPC("sepolia", "https://rpc2"))
	assert.Error(t, cfg.AddRPC("sepolia", "https://rpc1"), "duplicate")

	require.NoError(t, cfg.RemoveRPC("sepolia", "https://rpc1"))
	assert.Equal(t, []string{"https://rpc2"}, cfg.GetRPCs("sepolia"))
	assert.Error(t, cfg.RemoveRPC("sepolia", "https://nonexistent"))
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
	assert.Equal(t, filepath.Join(dir, "keys"), cfg.KeyringDir())
}

func TestAirdropGasLimitScalesWithRecipients(t *testing.T) {
	assert.Equal(t, config.GasLimitContractCall, config.AirdropGasLimit(0))
	assert.Equal(t, config.GasLimitContractCall+2*config.GasLimitPerRecipient, config.AirdropGasLimit(2))
	assert.Equal(t, config.GasLimitContractCall, config.AirdropGasLimit(-1))
}

// ---------------------------------------------------------------------------
// airdrop.yaml
// ---------------------------------------------------------------------------

func TestAirdropContractsBuiltinAnvil(t *testing.T) {
	contracts, err := config.LoadAirdropContracts(t.TempDir())
	require.NoError(t, err)

	addr, err := contracts.Lookup(31337)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"), addr)
}

func TestAirdropContractsUnsupportedChain(t *testing.T) {
	contracts := config.NewAirdropContracts(nil)
	_, err := contracts.Lookup(1)
	assert.ErrorIs(t, err, config.ErrUnsupportedChain)
}

func TestParseAirdropContracts(t *testing.T) {
	yml := []byte(`
chains:
  11155111:
    airdrop_contract: "0x1111111111111111111111111111111111111111"
  84532:
    airdrop_contract: "0x2222222222222222222222222222222222222222"
`)
	contracts, err := config.ParseAirdropContracts(yml)
	require.NoError(t, err)

	addr, err := contracts.Lookup(11155111)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	_, err = contracts.Lookup(31337)
	assert.NoError(t, err, "anvil default survives a file without it")
	assert.Len(t, contracts.ChainIDs(), 3)
}

func TestParseAirdropContractsOverridesAnvil(t *testing.T) {
	yml := []byte("chains:\n  31337:\n    airdrop_contract: \"0x3333333333333333333333333333333333333333\"\n")
	contracts, err := config.ParseAirdropContracts(yml)
	require.NoError(t, err)

	addr, err := contracts.Lookup(31337)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x3333333333333333333333333333333333333333"), addr)
}

func TestParseAirdropContractsRejectsBadAddress(t *testing.T) {
	_, err := config.ParseAirdropContracts([]byte("chains:\n  1:\n    airdrop_contract: \"0x123\"\n"))
	assert.ErrorContains(t, err, "invalid airdrop_contract")
}

func TestParseAirdropContractsRejectsBadYAML(t *testing.T) {
	_, err := config.ParseAirdropContracts([]byte("chains: [unclosed"))
	assert.Error(t, err)
}

func TestSaveAirdropContractRoundTrip(t *testing.T) {
	dir := t.TempDir()
	addr := common.HexToAddress("0x4444444444444444444444444444444444444444")
	require.NoError(t, config.SaveAirdropContract(dir, 84532, addr))
	require.NoError(t, config.SaveAirdropContract(dir, 11155111, addr))

	contracts, err := config.LoadAirdropContracts(dir)
	require.NoError(t, err)
	got, err := contracts.Lookup(84532)
	require.NoError(t, err)
	assert.Equal(t, addr, got)
	_, err = contracts.Lookup(11155111)
	assert.NoError(t, err)
}
