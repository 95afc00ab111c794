package cmd

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"list"},
	Short:   "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		keyring := cfg.Keyring
		if keyring == "" {
			keyring = "os keychain"
		}
		pairs := [][2]string{
			{"default_network", cfg.DefaultNetwork},
			{"default_wallet", cfg.DefaultWallet},
			{"network_mode", cfg.NetworkMode},
			{"rpc_algorithm", cfg.RPCAlgorithm},
			{"decimals", fmt.Sprintf("%d", cfg.Decimals)},
			{"confirm_timeout", cfg.TxTimeout().String()},
			{"keyring", keyring},
		}
		for name, urls := range cfg.CustomRPCs {
			if len(urls) > 0 {
				pairs = append(pairs, [2]string{"rpc." + name, strings.Join(urls, ", ")})
			}
		}
		fmt.Println(ui.KeyValueBlock("Current Configuration", pairs))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting and save it.

Keys: ` + strings.Join(config.Keys, ", ") + `

Examples:
  w3drop config set network_mode testnet
  w3drop config set decimals 6
  w3drop config set confirm_timeout 300`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if key == "default_network" {
			if _, err := resolveChainName(value); err != nil {
				return err
			}
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
