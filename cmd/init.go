package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	initMode     string
	initAlgo     string
	initContract string
	initNoWizard bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the default network and airdrop contract",
	Long: `Launch the interactive setup wizard, or pass --no-wizard with flags.

The airdrop contract address is stored per chain id in airdrop.yaml next to
config.json. Anvil (31337) ships with the default deployment address.

Examples:
  w3drop init
  w3drop init --no-wizard --network base --mode testnet --airdrop-contract 0xCONTRACT`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var result *ui.WizardResult
		if initNoWizard || !isTerminal() {
			result = &ui.WizardResult{
				DefaultNetwork:  networkFlag,
				NetworkMode:     initMode,
				RPCAlgorithm:    initAlgo,
				AirdropContract: initContract,
			}
		} else {
			fmt.Println(ui.Banner())
			var err error
			if result, err = ui.RunWizard(chainNames()); err != nil {
				return err
			}
			if result.Cancelled {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}
		return applySetup(result)
	},
}

func applySetup(r *ui.WizardResult) error {
	for key, value := range map[string]string{
		"default_network": r.DefaultNetwork,
		"network_mode":    r.NetworkMode,
		"rpc_algorithm":   r.RPCAlgorithm,
	} {
		if value == "" {
			continue
		}
		if err := cfg.Set(key, value); err != nil {
			return err
		}
	}
	c, err := resolveChainName(cfg.DefaultNetwork)
	if err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if r.AirdropContract != "" {
		if !common.IsHexAddress(r.AirdropContract) {
			return fmt.Errorf("airdrop contract %q is not a valid address", r.AirdropContract)
		}
		id := c.ID(cfg.NetworkMode)
		addr := common.HexToAddress(r.AirdropContract)
		if err := config.SaveAirdropContract(cfg.Dir(), id, addr); err != nil {
			return fmt.Errorf("saving airdrop contract: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Airdrop contract for %s (%d): %s", c.Label(cfg.NetworkMode), id, ui.Addr(addr.Hex()))))
	}

	fmt.Println(ui.Success(fmt.Sprintf("w3drop configured for %s (%s).", ui.ChainName(c.Label(cfg.NetworkMode)), cfg.NetworkMode)))
	fmt.Println(ui.Hint("Add a signing wallet with: w3drop wallet add <name> --key <private-key>"))
	return nil
}

func chainNames() []string {
	all := chain.NewRegistry().All()
	names := make([]string, len(all))
	for i, c := range all {
		names[i] = c.Name
	}
	return names
}

func init() {
	initCmd.Flags().StringVar(&initMode, "mode", "", "network mode: mainnet or testnet")
	initCmd.Flags().StringVar(&initAlgo, "algorithm", "", "RPC algorithm: fastest, round-robin or failover")
	initCmd.Flags().StringVar(&initContract, "airdrop-contract", "", "airdrop contract address for the default network")
	initCmd.Flags().BoolVar(&initNoWizard, "no-wizard", false, "apply flags without the interactive wizard")
}
