package airdrop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Mohsinsiddi/w3drop/internal/chain"
	"github.com/Mohsinsiddi/w3drop/internal/contract"
	"github.com/Mohsinsiddi/w3drop/internal/logx"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Receipt is a mined transaction receipt.
type Receipt = chain.TxReceipt

// Session is the connected wallet. Account's ok is false when none is connected.
type Session interface {
	Account() (common.Address, bool)
	ChainID() int64
}

// ContractWriter signs and broadcasts a state-changing call. *contract.Writer satisfies it.
type ContractWriter interface {
	WriteContract(ctx context.Context, addr common.Address, a *abi.ABI, fn string, args ...any) (common.Hash, error)
}

// ReceiptWaiter blocks until a transaction is mined. *contract.Waiter satisfies it.
// A mined receipt is returned whatever its status.
type ReceiptWaiter interface {
	WaitForReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
}

// ContractLookup resolves the airdrop contract for a chain. *config.AirdropContracts satisfies it.
type ContractLookup interface {
	Lookup(chainID int64) (common.Address, error)
}

// Step is one transaction in the sequence.
type Step string

const (
	StepApprove Step = "approve"
	StepAirdrop Step = "airdrop"
)

// Phase is where a step is.
type Phase string

const (
	PhaseSubmitting Phase = "submitting"
	PhaseWaiting    Phase = "waiting"
	PhaseConfirmed  Phase = "confirmed"
	PhaseFailed     Phase = "failed"
)

// StepEvent is emitted on every phase change.
type StepEvent struct {
	Step    Step
	Phase   Phase
	Hash    common.Hash
	Receipt *Receipt
	Err     error
}

// Observer receives step events synchronously, in order.
type Observer interface {
	OnStep(StepEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepEvent)

func (f ObserverFunc) OnStep(e StepEvent) { f(e) }

// Status is the terminal (or pending) state of a submission.
type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	}
	return "pending"
}

// Outcome is what a submission ended with. On StatusConfirmed, Receipt is the
// airdrop receipt. On StatusFailed, Err says why.
type Outcome struct {
	SubmissionID    string
	Status          Status
	Request         *AirdropRequest
	Allowance       *AllowanceState
	ApprovalHash    common.Hash
	ApprovalReceipt *Receipt
	AirdropHash     common.Hash
	Receipt         *Receipt
	Err             error
}

// Approved reports whether this submission sent an approval.
func (o Outcome) Approved() bool { return o.ApprovalReceipt != nil }

// Reason is the failure reason, empty unless StatusFailed.
func (o Outcome) Reason() string {
	if o.Status != StatusFailed || o.Err == nil {
		return ""
	}
	var tf *TransactionFailure
	if errors.As(o.Err, &tf) {
		return tf.Reason
	}
	return o.Err.Error()
}

func failed(o Outcome, err error) Outcome {
	o.Status = StatusFailed
	o.Err = err
	return o
}

// Orchestrator drives approve → airdropERC20 for one submission at a time.
type Orchestrator struct {
	writer    ContractWriter
	waiter    ReceiptWaiter
	contracts ContractLookup
	observer  Observer
	log       logrus.FieldLogger

	inFlight atomic.Bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithObserver registers a step observer.
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithLogger attaches a diagnostic logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOrchestrator wires the write side of the flow.
func NewOrchestrator(w ContractWriter, rw ReceiptWaiter, contracts ContractLookup, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		writer:    w,
		waiter:    rw,
		contracts: contracts,
		observer:  ObserverFunc(func(StepEvent) {}),
		log:       logx.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AirdropContract returns the spender for chainID, or an UnsupportedChain
// ValidationError.
func (o *Orchestrator) AirdropContract(chainID int64) (common.Address, error) {
	addr, err := o.contracts.Lookup(chainID)
	if err != nil {
		return common.Address{}, &ValidationError{
			Kind:  UnsupportedChain,
			Field: "chain",
			Value: chainLabel(chainID),
			Index: -1,
			Err:   err,
		}
	}
	return addr, nil
}

// Preflight checks the session before any chain call.
func Preflight(s Session) (common.Address, error) {
	if s == nil {
		return common.Address{}, ErrMissingWallet
	}
	acct, ok := s.Account()
	if !ok || acct == (common.Address{}) {
		return common.Address{}, ErrMissingWallet
	}
	return acct, nil
}

// Busy reports whether a submission is running.
func (o *Orchestrator) Busy() bool { return o.inFlight.Load() }

func (o *Orchestrator) acquire() bool { return o.inFlight.CompareAndSwap(false, true) }
func (o *Orchestrator) release()      { o.inFlight.Store(false) }

// Execute runs the transaction sequence for a validated request:
//
//	Approved < Required  → approve(spender, Required), wait → airdrop
//	otherwise            → airdrop
//	airdropERC20(token, recipients, amounts, total), wait → confirmed
//
// A failed step stops the sequence; nothing is rolled back. Waits are bounded
// by the ReceiptWaiter and ctx only.
func (o *Orchestrator) Execute(ctx context.Context, req *AirdropRequest, allowance *AllowanceState, session Session) Outcome {
	if !o.acquire() {
		return failed(Outcome{Request: req, Allowance: allowance}, ErrSubmissionInFlight)
	}
	defer o.release()
	return o.execute(ctx, req, allowance, session)
}

func (o *Orchestrator) execute(ctx context.Context, req *AirdropRequest, allowance *AllowanceState, session Session) Outcome {
	out := Outcome{
		SubmissionID: SubmissionID(ctx),
		Status:       StatusPending,
		Request:      req,
		Allowance:    allowance,
	}
	if _, err := Preflight(session); err != nil {
		return failed(out, err)
	}

	chainID := req.ChainID
	if chainID == 0 {
		chainID = session.ChainID()
	}
	spender, err := o.AirdropContract(chainID)
	if err != nil {
		return failed(out, err)
	}

	log := o.log.WithFields(logrus.Fields{"submission": out.SubmissionID, "chain": chainID})

	if allowance.NeedsApproval() {
		log.WithFields(logrus.Fields{"approved": allowance.Approved, "required": allowance.Required}).Debug("approval needed")
		hash, receipt, err := o.send(ctx, log, StepApprove, req.TokenAddress, contract.ERC20(), contract.FnApprove, spender, allowance.Required)
		out.ApprovalHash = hash
		if err == nil && !receipt.Succeeded() {
			err = ErrReverted
		}
		if err != nil {
			return failed(out, o.fail(log, StepApprove, hash, ReasonApprovalFailed, err))
		}
		out.ApprovalReceipt = receipt
		o.emit(log, StepEvent{Step: StepApprove, Phase: PhaseConfirmed, Hash: hash, Receipt: receipt})
	} else {
		log.Debug("allowance sufficient, skipping approval")
	}

	hash, receipt, err := o.send(ctx, log, StepAirdrop, spender, contract.Airdrop(), contract.FnAirdropERC20,
		req.TokenAddress, req.Recipients, req.Amounts, req.TotalAmount)
	out.AirdropHash = hash
	if err != nil {
		return failed(out, o.fail(log, StepAirdrop, hash, ReasonAirdropFailed, err))
	}
	if !receipt.Succeeded() {
		out.Receipt = receipt
		return failed(out, o.fail(log, StepAirdrop, hash, ReasonAirdropReverted, ErrReverted))
	}

	out.Receipt = receipt
	out.Status = StatusConfirmed
	o.emit(log, StepEvent{Step: StepAirdrop, Phase: PhaseConfirmed, Hash: hash, Receipt: receipt})
	return out
}

// send writes one transaction and waits for its receipt. The hash is returned
// even when the wait fails.
func (o *Orchestrator) send(ctx context.Context, log logrus.FieldLogger, step Step, to common.Address, a *abi.ABI, fn string, args ...any) (common.Hash, *Receipt, error) {
	o.emit(log, StepEvent{Step: step, Phase: PhaseSubmitting})
	hash, err := o.writer.WriteContract(ctx, to, a, fn, args...)
	if err != nil {
		return common.Hash{}, nil, err
	}

	o.emit(log, StepEvent{Step: step, Phase: PhaseWaiting, Hash: hash})
	receipt, err := o.waiter.WaitForReceipt(ctx, hash)
	if err != nil {
		return hash, nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), err)
	}
	if receipt == nil {
		return hash, nil, fmt.Errorf("waiting for %s: no receipt", hash.Hex())
	}
	return hash, receipt, nil
}

func (o *Orchestrator) fail(log logrus.FieldLogger, step Step, hash common.Hash, reason string, err error) error {
	tf := &TransactionFailure{Step: step, Hash: hash, Reason: reason, Err: err}
	o.emit(log, StepEvent{Step: step, Phase: PhaseFailed, Hash: hash, Err: tf})
	return tf
}

func (o *Orchestrator) emit(log logrus.FieldLogger, e StepEvent) {
	entry := log.WithFields(logrus.Fields{"step": e.Step, "phase": e.Phase})
	if e.Hash != (common.Hash{}) {
		entry = entry.WithField("hash", e.Hash.Hex())
	}
	if e.Err != nil {
		entry.WithError(e.Err).Warn("step failed")
	} else {
		entry.Debug("step")
	}
	o.observer.OnStep(e)
}
