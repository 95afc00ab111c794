package contract

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Function names used by the airdrop flow.
const (
	FnName          = "name"
	FnSymbol        = "symbol"
	FnDecimals      = "decimals"
	FnBalanceOf     = "balanceOf"
	FnAllowance     = "allowance"
	FnApprove       = "approve"
	FnAirdropERC20  = "airdropERC20"
	FnAreListsValid = "areListsValid"
)

// ERC20ABIJSON is the standard ERC-20 interface (EIP-20).
//
//go:embed abi/erc20.json
var ERC20ABIJSON []byte

// AirdropABIJSON is the TSender-style batch transfer contract:
//
//	airdropERC20(address tokenAddress, address[] recipients, uint256[] amounts, uint256 totalAmount)
//
//go:embed abi/airdrop.json
var AirdropABIJSON []byte

var (
	erc20ABI   = mustParse("erc20", ERC20ABIJSON)
	airdropABI = mustParse("airdrop", AirdropABIJSON)
)

// ERC20 returns the parsed ERC-20 ABI.
func ERC20() *abi.ABI { return &erc20ABI }

// Airdrop returns the parsed airdrop contract ABI.
func Airdrop() *abi.ABI { return &airdropABI }

// ParseABI parses a raw ABI JSON array.
func ParseABI(data []byte) (*abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing ABI: %w", err)
	}
	return &parsed, nil
}

func mustParse(name string, data []byte) abi.ABI {
	parsed, err := ParseABI(data)
	if err != nil {
		panic(fmt.Sprintf("embedded %s ABI: %v", name, err))
	}
	return *parsed
}
