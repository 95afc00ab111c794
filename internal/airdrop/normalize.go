package airdrop

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/ethereum/go-ethereum/common"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// uint256Bits bounds every amount and the total; the ABI encoder truncates
// wider values instead of failing.
const uint256Bits = 256

// AirdropRequest is a validated airdrop ready for the chain.
// len(Recipients) == len(Amounts) >= 1, every amount > 0 and
// TotalAmount is their exact sum. All of them fit in uint256.
type AirdropRequest struct {
	TokenAddress common.Address
	Recipients   []common.Address
	Amounts      []*big.Int
	TotalAmount  *big.Int
	ChainID      int64 // zero until bound to a session
}

// Normalize turns the three raw inputs into an AirdropRequest.
//
// Recipients are split on any run of commas and whitespace (newlines
// included). Amounts are split on commas, trimmed, and empty entries are
// dropped; each is a decimal token amount scaled by 10^decimals. A decimals
// value below zero means units.DefaultDecimals. Normalize is pure: the same
// inputs always produce the same request or the same error.
func Normalize(token, recipientsRaw, amountRaw string, decimals int) (*AirdropRequest, error) {
	if decimals < 0 {
		decimals = units.DefaultDecimals
	}

	tokenAddr, err := parseAddress("token", -1, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	recipients, err := ParseRecipients(recipientsRaw)
	if err != nil {
		return nil, err
	}

	amounts, err := ParseAmounts(amountRaw, decimals)
	if err != nil {
		return nil, err
	}

	if len(recipients) != len(amounts) {
		return nil, &ValidationError{
			Kind:  LengthMismatch,
			Field: "amounts",
			Value: fmt.Sprintf("%d recipients, %d amounts", len(recipients), len(amounts)),
			Index: -1,
		}
	}

	total := Sum(amounts)
	if total.BitLen() > uint256Bits {
		return nil, &ValidationError{Kind: AmountOverflow, Field: "amounts", Value: total.String(), Index: -1}
	}

	return &AirdropRequest{
		TokenAddress: tokenAddr,
		Recipients:   recipients,
		Amounts:      amounts,
		TotalAmount:  total,
	}, nil
}

// ParseRecipients splits and validates the recipient list, keeping order.
func ParseRecipients(raw string) ([]common.Address, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 {
		return nil, &ValidationError{Kind: EmptyRecipients, Field: "recipients", Index: -1}
	}

	out := make([]common.Address, 0, len(fields))
	for i, f := range fields {
		addr, err := parseAddress("recipients", i, f)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// ParseAmounts splits the comma separated amount list and scales each entry.
func ParseAmounts(raw string, decimals int) ([]*big.Int, error) {
	var out []*big.Int
	for _, part := range strings.Split(raw, ",") {
		s := strings.TrimSpace(part)
		if s == "" {
			continue
		}
		idx := len(out)

		n, err := units.ToBaseUnits(s, decimals)
		if err != nil {
			if errors.Is(err, units.ErrBadDecimals) {
				return nil, err
			}
			return nil, &ValidationError{Kind: MalformedAmount, Field: "amounts", Value: s, Index: idx, Err: err}
		}
		if n.Sign() <= 0 {
			return nil, &ValidationError{Kind: NonPositiveAmount, Field: "amounts", Value: s, Index: idx}
		}
		if n.BitLen() > uint256Bits {
			return nil, &ValidationError{Kind: AmountOverflow, Field: "amounts", Value: s, Index: idx}
		}
		out = append(out, n)
	}
	return out, nil
}

// Sum adds amounts in big-integer arithmetic.
func Sum(amounts []*big.Int) *big.Int {
	total := new(big.Int)
	for _, a := range amounts {
		total.Add(total, a)
	}
	return total
}

// Duplicates returns recipients listed more than once, in first-seen order.
func (r *AirdropRequest) Duplicates() []common.Address {
	seen := make(map[common.Address]int, len(r.Recipients))
	var dups []common.Address
	for _, a := range r.Recipients {
		seen[a]++
		if seen[a] == 2 {
			dups = append(dups, a)
		}
	}
	return dups
}

func parseAddress(field string, idx int, s string) (common.Address, error) {
	if !addressPattern.MatchString(s) {
		return common.Address{}, &ValidationError{Kind: MalformedAddress, Field: field, Value: s, Index: idx}
	}
	return common.HexToAddress(s), nil
}

func chainLabel(id int64) string { return strconv.FormatInt(id, 10) }
