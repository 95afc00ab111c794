package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/rpc"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
	Long: `Manage the RPC endpoints w3drop picks from. Custom endpoints are tried
before the built-in ones; W3DROP_RPC_URL bypasses selection entirely.`,
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChainName(args[0])
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(c.Name, args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(c.Name), args[1])))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if err := cfg.RemoveRPC(chainName, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", chainName, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list <chain>",
	Short: "List all RPCs for a chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChainName(args[0])
		if err != nil {
			return err
		}

		fmt.Println(ui.StyleTitle.Render("RPCs for " + c.DisplayName))
		fmt.Println(ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range c.MainnetRPCs {
			fmt.Printf("  %s %s\n", ui.Meta("(mainnet)"), r)
		}
		for _, r := range c.TestnetRPCs {
			fmt.Printf("  %s %s\n", ui.Meta("(testnet)"), r)
		}
		if custom := cfg.GetRPCs(c.Name); len(custom) > 0 {
			fmt.Println(ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Printf("  %s\n", r)
			}
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [chain]",
	Short: "Probe every RPC for a chain and show which one would be picked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := resolveChain()
		if len(args) == 1 {
			c, err = resolveChainName(args[0])
		}
		if err != nil {
			return err
		}
		mode := cfg.NetworkMode
		urls := rpcCandidates(c, mode)
		if len(urls) == 0 {
			return fmt.Errorf("no RPCs configured for %s", c.Label(mode))
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Benchmarking %d RPC(s) for %s...", len(urls), c.Label(mode)))
		spin.Start()
		results, err := rpc.Probe(ctx, urls, c.ID(mode))
		spin.Stop()
		if err != nil {
			return err
		}

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 10, Right: true},
			{Title: "Block #", Width: 12, Right: true},
			{Title: "Status", Width: 24},
		})
		for _, r := range results {
			status, latency, block := ui.StyleSuccess.Render("healthy"), fmt.Sprintf("%dms", r.Latency.Milliseconds()), fmt.Sprintf("%d", r.BlockNumber)
			if !r.Healthy() {
				status, latency, block = ui.StyleError.Render(r.Err.Error()), "-", "-"
			}
			t.AddRow(ui.Row{r.URL, latency, block, status})
		}

		best, pickErr := rpc.NewPicker(algo).Pick(results)
		if pickErr == nil {
			t.Marked = slices.IndexFunc(results, func(e rpc.Endpoint) bool { return e.URL == best.URL })
		}
		fmt.Println(t.Render())
		if pickErr != nil {
			return fmt.Errorf("%s: %w", c.Label(mode), pickErr)
		}
		fmt.Println(ui.Info(fmt.Sprintf("%s would pick %s", algo, best.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set the RPC selection algorithm",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Info("RPC algorithm: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:       "set <fastest|round-robin|failover>",
	Short:     "Set the RPC selection algorithm",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(rpc.AlgorithmFastest), string(rpc.AlgorithmRoundRobin), string(rpc.AlgorithmFailover)},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set("rpc_algorithm", args[0]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", args[0])))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
