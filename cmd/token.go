package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect ERC-20 tokens",
}

var tokenInfoCmd = &cobra.Command{
	Use:   "info <token-address>",
	Short: "Show an ERC-20 token's name, symbol and decimals",
	Long: `Read name(), symbol() and decimals() from a token contract. Use it to check
which --decimals value an airdrop needs.

Examples:
  w3drop token info 0xTOKEN
  w3drop token info 0xTOKEN --network base --testnet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := parseAddress("token", args[0])
		if err != nil {
			return err
		}
		net, err := dial(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		spin := ui.NewSpinner("Reading token metadata...")
		spin.Start()
		info, err := airdrop.ReadTokenInfo(ctx, contract.NewReader(net.client), token)
		spin.Stop()
		if err != nil {
			return describe(err)
		}

		fmt.Println(ui.KeyValueBlock("ERC-20 Token · "+net.label(), [][2]string{
			{"Address", ui.Addr(info.Address.Hex())},
			{"Name", ui.Val(info.Name)},
			{"Symbol", ui.Val(info.Symbol)},
			{"Decimals", fmt.Sprintf("%d", info.Decimals)},
		}))
		if int(info.Decimals) != cfg.Decimals {
			fmt.Println(ui.Hint(fmt.Sprintf("airdrops default to %d decimals; pass --decimals %d for this token", cfg.Decimals, info.Decimals)))
		}
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenInfoCmd)
}
