package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/logx"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/w3drop/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir      string
	cfg         *config.Config
	log         *logrus.Logger
	verbose     bool
	testnet     bool
	mainnet     bool
	networkFlag string
	walletFlag  string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "w3drop",
	Short: "ERC-20 airdrops from the terminal",
	Long: `w3drop sends an ERC-20 token to many recipients in one transaction.

  It checks the airdrop contract's allowance, approves the exact total when
  needed, then calls airdropERC20 and waits for the receipt.

Global flags --testnet and --mainnet override the configured network mode
for a single invocation (default: mainnet). Persist with:
  w3drop config set network_mode testnet`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logx.New(verbose)
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if testnet {
			cfg.NetworkMode = "testnet"
		}
		if mainnet {
			cfg.NetworkMode = "mainnet"
		}
		log.WithFields(logrus.Fields{
			"dir":     cfg.Dir(),
			"network": cfg.DefaultNetwork,
			"mode":    cfg.NetworkMode,
		}).Debug("config loaded")
		return nil
	},
}

// Execute runs the root command and exits 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

func init() {
	// W3DROP_CONFIG_DIR env var overrides the --config default.
	if envDir := os.Getenv(config.EnvConfigDir); envDir != "" {
		cfgDir = envDir
	}
	ui.SetVersion(Version)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.w3drop)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	pf.BoolVar(&testnet, "testnet", false, "use testnet instead of mainnet")
	pf.BoolVar(&mainnet, "mainnet", false, "use mainnet instead of testnet")
	pf.StringVarP(&networkFlag, "network", "n", "", "chain name (default: config)")
	pf.StringVarP(&walletFlag, "wallet", "w", "", "wallet name (default: config)")
	rootCmd.MarkFlagsMutuallyExclusive("testnet", "mainnet")

	rootCmd.AddCommand(
		initCmd,
		airdropCmd,
		allowanceCmd,
		approveCmd,
		balanceCmd,
		tokenCmd,
		walletCmd,
		configCmd,
		chainsCmd,
		rpcCmd,
		convertCmd,
		selectorCmd,
	)
}
