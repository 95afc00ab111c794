package airdrop

import (
	"context"

	"github.com/Mohsinsiddi/w3drop/internal/units"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type submissionKey struct{}

// WithSubmissionID returns ctx carrying id.
func WithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionKey{}, id)
}

// SubmissionID returns the id stored by WithSubmissionID, or "".
func SubmissionID(ctx context.Context) string {
	id, _ := ctx.Value(submissionKey{}).(string)
	return id
}

// Deps are the collaborators of one Run.
type Deps struct {
	Reader       ContractReader
	Orchestrator *Orchestrator
}

// Submission is the raw user input for one airdrop.
//
// Amounts are scaled by 10^Decimals. A zero Decimals means
// units.DefaultDecimals; set BaseUnits to send the amounts unscaled.
type Submission struct {
	ID         string // generated when empty
	Token      string
	Recipients string
	Amounts    string
	Decimals   int
	BaseUnits  bool // amounts are already in base units, Decimals is ignored
	Session    Session
}

// scale is the decimals value handed to Normalize.
func (s Submission) scale() int {
	switch {
	case s.BaseUnits:
		return 0
	case s.Decimals <= 0:
		return units.DefaultDecimals
	}
	return s.Decimals
}

// Run validates, resolves and executes one submission. Checks happen in order:
// supported chain, input normalization, connected wallet, allowance read. The
// first that fails ends the run with no transaction sent.
//
// The in-flight guard is held for the whole run, so a concurrent Run or
// Execute on the same Orchestrator is rejected with ErrSubmissionInFlight.
func Run(ctx context.Context, deps Deps, sub Submission) Outcome {
	o := deps.Orchestrator
	if !o.acquire() {
		return failed(Outcome{SubmissionID: sub.ID}, ErrSubmissionInFlight)
	}
	defer o.release()

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	ctx = WithSubmissionID(ctx, sub.ID)
	out := Outcome{SubmissionID: sub.ID}
	log := o.log.WithField("submission", sub.ID)

	if sub.Session == nil {
		return failed(out, ErrMissingWallet)
	}
	chainID := sub.Session.ChainID()
	spender, err := o.AirdropContract(chainID)
	if err != nil {
		return failed(out, err)
	}

	req, err := Normalize(sub.Token, sub.Recipients, sub.Amounts, sub.scale())
	if err != nil {
		return failed(out, err)
	}
	req.ChainID = chainID
	out.Request = req

	owner, err := Preflight(sub.Session)
	if err != nil {
		return failed(out, err)
	}

	log.WithFields(logrus.Fields{
		"token":      req.TokenAddress.Hex(),
		"recipients": len(req.Recipients),
		"total":      req.TotalAmount.String(),
	}).Debug("resolving allowance")

	allowance, err := ResolveAllowance(ctx, deps.Reader, req.TokenAddress, owner, spender, req.TotalAmount)
	if err != nil {
		return failed(out, err)
	}

	return o.execute(ctx, req, allowance, sub.Session)
}
