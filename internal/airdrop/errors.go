package airdrop

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ValidationKind names the way an input failed validation.
type ValidationKind string

const (
	LengthMismatch    ValidationKind = "length_mismatch"
	MalformedAddress  ValidationKind = "malformed_address"
	NonPositiveAmount ValidationKind = "non_positive_amount"
	MalformedAmount   ValidationKind = "malformed_amount"
	AmountOverflow    ValidationKind = "amount_overflow"
	EmptyRecipients   ValidationKind = "empty_recipients"
	UnsupportedChain  ValidationKind = "unsupported_chain"
)

// ValidationError is returned before any network call when the raw inputs or
// the active chain cannot produce a valid AirdropRequest.
type ValidationError struct {
	Kind  ValidationKind
	Field string // "token", "recipients", "amounts" or "chain"
	Value string
	Index int // position in the list, -1 when not applicable
	Err   error
}

func (e *ValidationError) Error() string {
	where := e.Field
	if e.Index >= 0 {
		where = fmt.Sprintf("%s[%d]", e.Field, e.Index)
	}
	switch e.Kind {
	case LengthMismatch:
		return fmt.Sprintf("recipients and amounts differ in length (%s)", e.Value)
	case MalformedAddress:
		return fmt.Sprintf("%s: %q is not a 0x-prefixed 40 hex digit address", where, e.Value)
	case NonPositiveAmount:
		return fmt.Sprintf("%s: amount %q must be greater than zero", where, e.Value)
	case MalformedAmount:
		if e.Err != nil {
			return fmt.Sprintf("%s: amount %q: %v", where, e.Value, e.Err)
		}
		return fmt.Sprintf("%s: amount %q is not a decimal number", where, e.Value)
	case AmountOverflow:
		if e.Index < 0 {
			return fmt.Sprintf("%s: total %s does not fit in uint256", where, e.Value)
		}
		return fmt.Sprintf("%s: amount %q does not fit in uint256", where, e.Value)
	case EmptyRecipients:
		return "no recipients given"
	case UnsupportedChain:
		return fmt.Sprintf("no airdrop contract configured for chain %s", e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", where, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError of kind k.
func IsValidation(err error, k ValidationKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == k
}

// Sentinel errors.
var (
	// ErrMissingWallet means no account is connected; nothing was sent.
	ErrMissingWallet = errors.New("no wallet connected")
	// ErrSubmissionInFlight is returned when a submission is already running.
	ErrSubmissionInFlight = errors.New("an airdrop submission is already in progress")
	// ErrReverted marks a mined transaction whose receipt status is failure.
	ErrReverted = errors.New("transaction reverted")
)

// ChainReadError wraps a failed allowance, balance or metadata read.
type ChainReadError struct {
	Op  string // e.g. "allowance", "balanceOf"
	Err error
}

func (e *ChainReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Op, e.Err)
}

func (e *ChainReadError) Unwrap() error { return e.Err }

// Failure reasons carried by TransactionFailure.
const (
	ReasonApprovalFailed  = "approval failed"
	ReasonAirdropReverted = "airdrop transaction reverted"
	ReasonAirdropFailed   = "airdrop transaction failed"
)

// TransactionFailure is the terminal failure of one transaction step.
type TransactionFailure struct {
	Step   Step
	Hash   common.Hash // zero when the transaction never reached the node
	Reason string
	Err    error
}

func (e *TransactionFailure) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *TransactionFailure) Unwrap() error { return e.Err }

// Broadcast reports whether the transaction got a hash before failing.
func (e *TransactionFailure) Broadcast() bool { return e.Hash != (common.Hash{}) }

// ErrorCategory groups errors so each failure maps to a distinct message.
type ErrorCategory string

const (
	CategoryNone       ErrorCategory = ""
	CategoryValidation ErrorCategory = "validation"
	CategoryWallet     ErrorCategory = "wallet"
	CategoryRead       ErrorCategory = "read"
	CategoryApproval   ErrorCategory = "approval"
	CategoryAirdrop    ErrorCategory = "airdrop"
	CategoryBusy       ErrorCategory = "busy"
	CategoryOther      ErrorCategory = "other"
)

// Category classifies err.
func Category(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}
	var (
		ve *ValidationError
		re *ChainReadError
		tf *TransactionFailure
	)
	switch {
	case errors.As(err, &ve):
		return CategoryValidation
	case errors.Is(err, ErrMissingWallet):
		return CategoryWallet
	case errors.Is(err, ErrSubmissionInFlight):
		return CategoryBusy
	case errors.As(err, &re):
		return CategoryRead
	case errors.As(err, &tf):
		if tf.Step == StepApprove {
			return CategoryApproval
		}
		return CategoryAirdrop
	}
	return CategoryOther
}

// Headline is a short human summary for err's category.
func Headline(err error) string {
	switch Category(err) {
	case CategoryNone:
		return ""
	case CategoryValidation:
		return "Invalid airdrop input"
	case CategoryWallet:
		return "Connect a wallet first"
	case CategoryBusy:
		return "Submission already running"
	case CategoryRead:
		return "Could not read token state"
	case CategoryApproval:
		return "Approval failed"
	case CategoryAirdrop:
		var tf *TransactionFailure
		if errors.As(err, &tf) && tf.Reason == ReasonAirdropReverted {
			return "Airdrop reverted"
		}
		return "Airdrop failed"
	}
	return "Airdrop error"
}
