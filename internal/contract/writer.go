package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/Mohsinsiddi/w3drop/internal/logx"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

// TxBackend is the node surface a Writer needs to build and broadcast a
// transaction. *chain.EVMClient satisfies it.
type TxBackend interface {
	GetPendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, from, to common.Address, data []byte) (uint64, error)
	SendRawTransaction(ctx context.Context, signed []byte) (common.Hash, error)
}

// TxSigner signs transactions for one account. *wallet.Signer satisfies it.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error)
}

// Writer sends state-changing contract calls signed by a local key.
type Writer struct {
	backend     TxBackend
	signer      TxSigner
	chainID     *big.Int
	fallbackGas uint64
	log         logrus.FieldLogger
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithFallbackGas sets the gas limit used when the node cannot estimate.
func WithFallbackGas(gas uint64) WriterOption {
	return func(w *Writer) {
		if gas > 0 {
			w.fallbackGas = gas
		}
	}
}

// WithLogger attaches a logger for gas and nonce diagnostics.
func WithLogger(l logrus.FieldLogger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWriter creates a Writer for chainID.
func NewWriter(backend TxBackend, signer TxSigner, chainID int64, opts ...WriterOption) *Writer {
	w := &Writer{
		backend:     backend,
		signer:      signer,
		chainID:     big.NewInt(chainID),
		fallbackGas: config.GasLimitContractCall,
		log:         logx.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// From returns the sending account.
func (w *Writer) From() common.Address { return w.signer.Address() }

// WriteContract packs fn(args...), signs an EIP-1559 transaction to addr and
// broadcasts it. The returned hash is not yet mined.
func (w *Writer) WriteContract(ctx context.Context, addr common.Address, a *abi.ABI, fn string, args ...any) (common.Hash, error) {
	m, ok := a.Methods[fn]
	if !ok {
		return common.Hash{}, fmt.Errorf("function %q not found in ABI", fn)
	}
	if m.IsConstant() {
		return common.Hash{}, fmt.Errorf("function %q is not a write function", fn)
	}

	calldata, err := a.Pack(fn, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encoding call: %w", err)
	}

	from := w.signer.Address()

	gas, err := w.backend.EstimateGas(ctx, from, addr, calldata)
	if err != nil {
		var rpcErr *chain.RPCError
		if errors.As(err, &rpcErr) && rpcErr.IsRevert() {
			return common.Hash{}, fmt.Errorf("estimating gas for %s: %w", fn, err)
		}
		w.log.WithError(err).WithField("fallback", w.fallbackGas).Debug("gas estimation failed")
		gas = w.fallbackGas
	}

	gasPrice, err := w.backend.GasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := w.backend.GetPendingNonce(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   w.chainID,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &addr,
		Value:     big.NewInt(0),
		Data:      calldata,
	})

	raw, err := w.signer.SignTx(tx, w.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	w.log.WithFields(logrus.Fields{
		"fn":    fn,
		"to":    addr.Hex(),
		"nonce": nonce,
		"gas":   gas,
	}).Debug("broadcasting transaction")

	hash, err := w.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}
