package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/spf13/cobra"
)

var selectorCmd = &cobra.Command{
	Use:   "selector <signature-or-selector>",
	Short: "Compute or look up a 4-byte function selector",
	Long: `Compute a 4-byte function selector from a signature, or look up a
selector among the ERC-20 and airdrop functions w3drop calls.

Examples:
  w3drop selector "approve(address spender, uint256 amount)"   # → 0x095ea7b3
  w3drop selector "airdropERC20(address,address[],uint256[],uint256)"
  w3drop selector 0x095ea7b3                                   # → approve`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		if strings.HasPrefix(input, "0x") || strings.HasPrefix(input, "0X") {
			sig, ok := lookupSelector(input)
			if !ok {
				sig = ui.Meta("unknown")
			}
			fmt.Println(ui.KeyValueBlock("Selector Lookup", [][2]string{
				{"Selector", input},
				{"Method", ui.Val(sig)},
			}))
			return nil
		}

		sig := normalizeSignature(input)
		fmt.Println(ui.KeyValueBlock("Function Selector", [][2]string{
			{"Signature", sig},
			{"Selector", ui.Val(contract.Selector(sig))},
		}))
		return nil
	},
}

// lookupSelector finds a 0x selector in the built-in ABIs.
func lookupSelector(s string) (string, bool) {
	id, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(s), "0x"))
	if err != nil || len(id) != 4 {
		return "", false
	}
	for _, a := range []*abi.ABI{contract.Airdrop(), contract.ERC20()} {
		if m, err := a.MethodById(id); err == nil {
			return m.Sig, true
		}
	}
	return "", false
}

// normalizeSignature removes parameter names, keeping only types.
// "transfer(address to, uint256 amount)" → "transfer(address,uint256)"
func normalizeSignature(sig string) string {
	open := strings.Index(sig, "(")
	if open < 0 || !strings.HasSuffix(sig, ")") {
		return sig
	}

	name := strings.TrimSpace(sig[:open])
	params := strings.TrimSpace(sig[open+1 : len(sig)-1])
	if params == "" {
		return name + "()"
	}

	var types []string
	for _, p := range strings.Split(params, ",") {
		if parts := strings.Fields(p); len(parts) > 0 {
			types = append(types, parts[0])
		}
	}
	return name + "(" + strings.Join(types, ",") + ")"
}
