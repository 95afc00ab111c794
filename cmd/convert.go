package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/w3drop/internal/ui"
	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/spf13/cobra"
)

var convertDecimals int

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert between token units and base units",
	Long: `Convert amounts the same way the airdrop command scales them.

Examples:
  w3drop convert to-base 1.5                # → 1500000000000000000
  w3drop convert to-base 2.25 --decimals 6  # → 2250000
  w3drop convert from-base 2250000 --decimals 6
  w3drop convert from-base 0x14d1120d7b160000`,
}

var convertToBaseCmd = &cobra.Command{
	Use:   "to-base <amount>",
	Short: "Scale a token amount to base units",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := toBase(args[0], decimalsFor(cmd))
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Unit Conversion", [][2]string{
			{"Input", ui.Val(args[0])},
			{"Decimals", fmt.Sprintf("%d", decimalsFor(cmd))},
			{"Base Units", ui.Val(raw.String())},
			{"Hex", ui.Val("0x" + raw.Text(16))},
		}))
		return nil
	},
}

var convertFromBaseCmd = &cobra.Command{
	Use:   "from-base <raw>",
	Short: "Render base units (decimal or 0x hex) as a token amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := parseRaw(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Unit Conversion", [][2]string{
			{"Input", ui.Val(args[0])},
			{"Decimals", fmt.Sprintf("%d", decimalsFor(cmd))},
			{"Amount", ui.Val(units.ToDecimalString(raw, decimalsFor(cmd)))},
			{"Base Units", raw.String()},
		}))
		return nil
	},
}

// decimalsFor returns --decimals when given, else the configured scale.
func decimalsFor(cmd *cobra.Command) int {
	if cmd.Flags().Changed("decimals") {
		return convertDecimals
	}
	return cfg.Decimals
}

func toBase(amount string, decimals int) (*big.Int, error) {
	v, err := units.ToBaseUnits(amount, decimals)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", amount, err)
	}
	return v, nil
}

// parseRaw accepts a non-negative integer in decimal or 0x hex.
func parseRaw(s string) (*big.Int, error) {
	base, digits := 10, s
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		base, digits = 16, rest
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid base-unit value %q", s)
	}
	return n, nil
}

func init() {
	convertCmd.PersistentFlags().IntVar(&convertDecimals, "decimals", units.DefaultDecimals, "token decimals (default: config)")
	convertCmd.AddCommand(convertToBaseCmd, convertFromBaseCmd)
}
