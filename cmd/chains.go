package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/spf13/cobra"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains and their airdrop contracts",
	RunE: func(cmd *cobra.Command, args []string) error {
		contracts, err := config.LoadAirdropContracts(cfg.Dir())
		if err != nil {
			return err
		}
		mode := cfg.NetworkMode

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 10},
			{Title: "Network", Width: 22},
			{Title: "Chain ID", Width: 10, Right: true},
			{Title: "Airdrop Contract", Width: 44},
		})
		for i, c := range chain.NewRegistry().All() {
			id := c.ID(mode)
			contract := ui.Meta("not configured")
			if addr, err := contracts.Lookup(id); err == nil {
				contract = ui.Addr(addr.Hex())
			}
			if c.Name == cfg.DefaultNetwork {
				t.Marked = i
			}
			t.AddRow(ui.Row{c.Name, c.Label(mode), fmt.Sprintf("%d", id), contract})
		}
		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("Supported chains (%s)", mode)))
		fmt.Println(t.Render())
		fmt.Println(ui.Hint("Register a contract with: w3drop init --no-wizard --network <name> --airdrop-contract <address>"))
		return nil
	},
}
