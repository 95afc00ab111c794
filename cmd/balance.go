package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/spf13/cobra"
)

var balanceToken string

var balanceCmd = &cobra.Command{
	Use:   "balance [wallet-name-or-address]",
	Short: "Check an ERC-20 token balance",
	Long: `Check the ERC-20 balance of an address or wallet. Defaults to the active
wallet.

Examples:
  w3drop balance --token 0xTOKEN
  w3drop balance 0xABC... --token 0xTOKEN --network base --testnet
  w3drop balance treasury --token 0xTOKEN`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := parseAddress("token", balanceToken)
		if err != nil {
			return err
		}
		var who string
		if len(args) == 1 {
			who = args[0]
		}
		owner, err := resolveAddress(who)
		if err != nil {
			return err
		}

		net, err := dial(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Fetching balance on %s...", ui.ChainName(net.label())))
		spin.Start()
		reader := contract.NewReader(net.client)
		info, err := airdrop.ReadTokenInfo(ctx, reader, token)
		if err != nil {
			spin.Stop()
			return describe(err)
		}
		bal, err := airdrop.ReadBalance(ctx, reader, token, owner)
		spin.Stop()
		if err != nil {
			return describe(err)
		}

		fmt.Println(ui.KeyValueBlock("Token Balance · "+net.label(), [][2]string{
			{"Address", ui.Addr(owner.Hex())},
			{"Token", fmt.Sprintf("%s %s", ui.Addr(token.Hex()), ui.Meta("("+info.Name+")"))},
			{"Balance", ui.Amount(units.ToDecimalString(bal, int(info.Decimals)), info.Symbol)},
			{"Raw", bal.String()},
		}))
		return nil
	},
}

func init() {
	balanceCmd.Flags().StringVar(&balanceToken, "token", "", "ERC-20 token address (required)")
}
