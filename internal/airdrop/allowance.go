package airdrop

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractReader performs read-only contract calls. *contract.Reader satisfies it.
type ContractReader interface {
	ReadContract(ctx context.Context, addr common.Address, a *abi.ABI, fn string, args ...any) ([]any, error)
}

// AllowanceState is a one-shot snapshot of what the airdrop contract may
// spend. It is never cached across submissions.
type AllowanceState struct {
	Approved *big.Int
	Required *big.Int
	Balance  *big.Int
}

// NeedsApproval reports Approved < Required.
func (s *AllowanceState) NeedsApproval() bool {
	return s.Approved.Cmp(s.Required) < 0
}

// Insufficient reports Balance < Required. The airdrop will revert on chain
// in that case; the flow still proceeds and lets the chain decide.
func (s *AllowanceState) Insufficient() bool {
	return s.Balance != nil && s.Balance.Cmp(s.Required) < 0
}

// ResolveAllowance reads allowance(owner, spender) and balanceOf(owner) on
// token. Either read failing yields a *ChainReadError; there is no retry.
func ResolveAllowance(ctx context.Context, reader ContractReader, token, owner, spender common.Address, required *big.Int) (*AllowanceState, error) {
	approved, err := readUint(ctx, reader, token, contract.FnAllowance, owner, spender)
	if err != nil {
		return nil, err
	}
	balance, err := readUint(ctx, reader, token, contract.FnBalanceOf, owner)
	if err != nil {
		return nil, err
	}
	return &AllowanceState{
		Approved: approved,
		Required: new(big.Int).Set(required),
		Balance:  balance,
	}, nil
}

// TokenInfo is ERC-20 metadata shown in previews.
type TokenInfo struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
}

// ReadTokenInfo reads name, symbol and decimals.
func ReadTokenInfo(ctx context.Context, reader ContractReader, token common.Address) (*TokenInfo, error) {
	name, err := readString(ctx, reader, token, contract.FnName)
	if err != nil {
		return nil, err
	}
	symbol, err := readString(ctx, reader, token, contract.FnSymbol)
	if err != nil {
		return nil, err
	}
	out, err := reader.ReadContract(ctx, token, contract.ERC20(), contract.FnDecimals)
	if err != nil {
		return nil, &ChainReadError{Op: contract.FnDecimals, Err: err}
	}
	decimals, ok := first[uint8](out)
	if !ok {
		return nil, &ChainReadError{Op: contract.FnDecimals, Err: fmt.Errorf("unexpected result %v", out)}
	}
	return &TokenInfo{Address: token, Name: name, Symbol: symbol, Decimals: decimals}, nil
}

// ReadBalance reads balanceOf(owner) on token.
func ReadBalance(ctx context.Context, reader ContractReader, token, owner common.Address) (*big.Int, error) {
	return readUint(ctx, reader, token, contract.FnBalanceOf, owner)
}

func readUint(ctx context.Context, reader ContractReader, token common.Address, fn string, args ...any) (*big.Int, error) {
	out, err := reader.ReadContract(ctx, token, contract.ERC20(), fn, args...)
	if err != nil {
		return nil, &ChainReadError{Op: fn, Err: err}
	}
	n, ok := first[*big.Int](out)
	if !ok || n == nil {
		return nil, &ChainReadError{Op: fn, Err: fmt.Errorf("unexpected result %v", out)}
	}
	return n, nil
}

func readString(ctx context.Context, reader ContractReader, token common.Address, fn string) (string, error) {
	out, err := reader.ReadContract(ctx, token, contract.ERC20(), fn)
	if err != nil {
		return "", &ChainReadError{Op: fn, Err: err}
	}
	s, ok := first[string](out)
	if !ok {
		return "", &ChainReadError{Op: fn, Err: fmt.Errorf("unexpected result %v", out)}
	}
	return s, nil
}

func first[T any](out []any) (T, bool) {
	var zero T
	if len(out) == 0 {
		return zero, false
	}
	v, ok := out[0].(T)
	return v, ok
}
