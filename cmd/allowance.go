package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/Mohsinsiddi/w3drop/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	allowanceToken   string
	allowanceOwner   string
	allowanceSpender string

	approveToken   string
	approveSpender string
	approveAmount  string
	approveYes     bool
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Check an ERC-20 allowance (owner → spender)",
	Long: `Query how many tokens an owner has approved a spender to use.

The spender defaults to the airdrop contract of the active chain, the owner
to the active wallet.

Examples:
  w3drop allowance --token 0xTOKEN
  w3drop allowance --token 0xTOKEN --owner myWallet --spender 0xRouter --network base`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := parseAddress("token", allowanceToken)
		if err != nil {
			return err
		}
		owner, err := resolveAddress(allowanceOwner)
		if err != nil {
			return err
		}

		net, err := dial(cmd.Context())
		if err != nil {
			return err
		}
		spender, err := spenderOrAirdrop(allowanceSpender, net.chainID)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		defer cancel()

		spin := ui.NewSpinner("Querying allowance...")
		spin.Start()
		reader := contract.NewReader(net.client)
		info, err := airdrop.ReadTokenInfo(ctx, reader, token)
		if err != nil {
			spin.Stop()
			return describe(err)
		}
		allowance, err := reader.ReadContract(ctx, token, contract.ERC20(), contract.FnAllowance, owner, spender)
		spin.Stop()
		if err != nil {
			return describe(&airdrop.ChainReadError{Op: contract.FnAllowance, Err: err})
		}
		approved, ok := firstBig(allowance)
		if !ok {
			return fmt.Errorf("allowance: unexpected return %v", allowance)
		}

		fmt.Println(ui.KeyValueBlock("ERC-20 Allowance", [][2]string{
			{"Token", fmt.Sprintf("%s %s", ui.Addr(token.Hex()), ui.Meta("("+info.Symbol+")"))},
			{"Owner", ui.Addr(owner.Hex())},
			{"Spender", ui.Addr(spender.Hex())},
			{"Allowance", ui.Amount(units.ToDecimalString(approved, int(info.Decimals)), info.Symbol)},
			{"Raw", approved.String()},
			{"Network", net.label()},
		}))
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve an ERC-20 spender for an exact amount",
	Long: `Approve a spender to use a specific amount of your ERC-20 tokens. The
spender defaults to the airdrop contract of the active chain. The amount is
scaled by the token's own decimals unless --decimals is given.

Examples:
  w3drop approve --token 0xTOKEN --amount 1000
  w3drop approve --token 0xTOKEN --spender 0xRouter --amount 1000 --wallet myWallet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := parseAddress("token", approveToken)
		if err != nil {
			return err
		}
		if approveAmount == "" {
			return fmt.Errorf("--amount is required")
		}

		w, mgr, err := loadSigningWallet()
		if err != nil {
			return err
		}
		net, err := dial(cmd.Context())
		if err != nil {
			return err
		}
		spender, err := spenderOrAirdrop(approveSpender, net.chainID)
		if err != nil {
			return err
		}

		reader := contract.NewReader(net.client)
		readCtx, cancel := context.WithTimeout(cmd.Context(), config.ReadTimeout)
		info, err := airdrop.ReadTokenInfo(readCtx, reader, token)
		cancel()
		if err != nil {
			return describe(err)
		}
		decimals := int(info.Decimals)
		if f := cmd.Flags().Lookup("decimals"); f != nil && f.Changed {
			decimals, _ = cmd.Flags().GetInt("decimals")
		}
		amount, err := units.ToBaseUnits(approveAmount, decimals)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		if amount.Sign() < 0 {
			return fmt.Errorf("--amount must not be negative")
		}

		fmt.Println(ui.KeyValueBlock("Approve Preview · "+net.label(), [][2]string{
			{"From", ui.Addr(w.Address)},
			{"Token", fmt.Sprintf("%s %s", ui.Addr(token.Hex()), ui.Meta("("+info.Symbol+")"))},
			{"Spender", ui.Addr(spender.Hex())},
			{"Amount", fmt.Sprintf("%s (decimals: %d)", ui.Amount(approveAmount, info.Symbol), decimals)},
			{"Raw", amount.String()},
		}))

		if !approveYes && !ui.Confirm("Broadcast this approve transaction?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}

		writer := contract.NewWriter(net.client, wallet.NewSigner(w, mgr.Keystore()), net.chainID,
			contract.WithFallbackGas(config.GasLimitERC20Approve),
			contract.WithLogger(log),
		)
		spin := ui.NewSpinner("Broadcasting approve...")
		spin.Start()
		hash, err := writer.WriteContract(cmd.Context(), token, contract.ERC20(), contract.FnApprove, spender, amount)
		spin.Stop()
		if err != nil {
			return describe(&airdrop.TransactionFailure{Step: airdrop.StepApprove, Reason: airdrop.ReasonApprovalFailed, Err: err})
		}

		spin = ui.NewSpinner("Waiting for confirmation...")
		spin.Start()
		receipt, err := contract.NewWaiter(net.client, cfg.TxTimeout()).WaitForReceipt(cmd.Context(), hash)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("tx %s: %w", hash.Hex(), err)
		}
		if !receipt.Succeeded() {
			return describe(&airdrop.TransactionFailure{Step: airdrop.StepApprove, Hash: hash, Reason: airdrop.ReasonApprovalFailed, Err: airdrop.ErrReverted})
		}

		pairs := [][2]string{
			{"Hash", ui.Addr(hash.Hex())},
			{"Block", fmt.Sprintf("%d", receipt.BlockNumber)},
			{"Gas Used", fmt.Sprintf("%d", receipt.GasUsed)},
		}
		if u := net.txURL(hash.Hex()); u != "" {
			pairs = append(pairs, [2]string{"Explorer", u})
		}
		fmt.Println()
		fmt.Println(ui.KeyValueBlock("Approve Confirmed ✓", pairs))
		return nil
	},
}

// spenderOrAirdrop parses s, or falls back to the airdrop contract for chainID.
func spenderOrAirdrop(s string, chainID int64) (common.Address, error) {
	if s != "" {
		return parseAddress("spender", s)
	}
	contracts, err := config.LoadAirdropContracts(cfg.Dir())
	if err != nil {
		return common.Address{}, err
	}
	addr, err := contracts.Lookup(chainID)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: pass --spender or register one with `w3drop init`", err)
	}
	return addr, nil
}

func init() {
	allowanceCmd.Flags().StringVar(&allowanceToken, "token", "", "ERC-20 token address (required)")
	allowanceCmd.Flags().StringVar(&allowanceOwner, "owner", "", "owner address or wallet name (default: active wallet)")
	allowanceCmd.Flags().StringVar(&allowanceSpender, "spender", "", "spender address (default: airdrop contract)")

	approveCmd.Flags().StringVar(&approveToken, "token", "", "ERC-20 token address (required)")
	approveCmd.Flags().StringVar(&approveSpender, "spender", "", "spender address (default: airdrop contract)")
	approveCmd.Flags().StringVar(&approveAmount, "amount", "", "amount to approve, in token units (required)")
	approveCmd.Flags().Int("decimals", units.DefaultDecimals, "override the token's decimals")
	approveCmd.Flags().BoolVarP(&approveYes, "yes", "y", false, "skip the confirmation prompt")
}
