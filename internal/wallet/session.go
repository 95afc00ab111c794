package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ChainIDSource reports the chain a node is serving. *chain.EVMClient satisfies it.
type ChainIDSource interface {
	ChainID(ctx context.Context) (int64, error)
}

// Session is the connected account and the chain it is connected to.
// A Session without an account is valid; it models "no wallet connected".
type Session struct {
	account   common.Address
	connected bool
	chainID   int64
}

// NewSession returns a session for w on chainID. A nil w yields a
// disconnected session.
func NewSession(w *Wallet, chainID int64) *Session {
	s := &Session{chainID: chainID}
	if w != nil && common.IsHexAddress(w.Address) {
		s.account = w.Account()
		s.connected = true
	}
	return s
}

// Connect asks the node which chain it serves and binds w to it.
func Connect(ctx context.Context, w *Wallet, src ChainIDSource) (*Session, error) {
	id, err := src.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	return NewSession(w, id), nil
}

// Account returns the connected address; ok is false when no wallet is connected.
func (s *Session) Account() (common.Address, bool) {
	return s.account, s.connected
}

// ChainID returns the active chain id.
func (s *Session) ChainID() int64 { return s.chainID }
