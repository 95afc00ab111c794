package contract

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// ReceiptBackend polls for mined receipts. *chain.EVMClient satisfies it.
type ReceiptBackend interface {
	WaitForReceipt(ctx context.Context, hash common.Hash, timeout time.Duration) (*chain.TxReceipt, error)
}

// Waiter binds a confirmation timeout to a ReceiptBackend.
type Waiter struct {
	backend ReceiptBackend
	timeout time.Duration
}

// NewWaiter returns a Waiter; a zero timeout means config.TxConfirmTimeout.
func NewWaiter(backend ReceiptBackend, timeout time.Duration) *Waiter {
	if timeout <= 0 {
		timeout = config.TxConfirmTimeout
	}
	return &Waiter{backend: backend, timeout: timeout}
}

// WaitForReceipt blocks until hash is mined, the timeout passes or ctx ends.
func (w *Waiter) WaitForReceipt(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error) {
	return w.backend.WaitForReceipt(ctx, hash, w.timeout)
}
