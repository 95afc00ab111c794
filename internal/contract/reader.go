package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// CallBackend executes read-only eth_call requests. *chain.EVMClient satisfies it.
type CallBackend interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// Reader calls view/pure contract functions and decodes their results.
type Reader struct {
	backend CallBackend
}

// NewReader creates a Reader over backend.
func NewReader(backend CallBackend) *Reader {
	return &Reader{backend: backend}
}

// ReadContract packs fn(args...), runs it with eth_call against addr and
// returns the unpacked outputs in ABI order.
func (r *Reader) ReadContract(ctx context.Context, addr common.Address, a *abi.ABI, fn string, args ...any) ([]any, error) {
	m, ok := a.Methods[fn]
	if !ok {
		return nil, fmt.Errorf("function %q not found in ABI", fn)
	}
	if !m.IsConstant() {
		return nil, fmt.Errorf("function %q is not a read function (stateMutability: %s)", fn, m.StateMutability)
	}

	calldata, err := a.Pack(fn, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding call: %w", err)
	}

	result, err := r.backend.CallContract(ctx, addr, calldata)
	if err != nil {
		return nil, fmt.Errorf("contract call failed: %w", err)
	}
	if len(result) == 0 && len(m.Outputs) > 0 {
		return nil, fmt.Errorf("%s returned no data (is %s a contract?)", fn, addr.Hex())
	}

	out, err := a.Unpack(fn, result)
	if err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}
	return out, nil
}
