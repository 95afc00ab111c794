package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
)

// StepMsg carries an orchestrator step event into the progress model.
type StepMsg airdrop.StepEvent

// DoneMsg ends the progress view with the submission outcome.
type DoneMsg struct{ Outcome airdrop.Outcome }

type progressTickMsg struct{}

type stepRow struct {
	step  airdrop.Step
	label string
	phase airdrop.Phase
	hash  string
	err   string
}

// AirdropProgressModel is the Bubble Tea model for a live airdrop submission.
// It shows one line per transaction step and quits on DoneMsg.
type AirdropProgressModel struct {
	Title    string
	TxURL    func(hash string) string // explorer link, may be nil
	Rows     []stepRow
	Frame    int
	Outcome  *airdrop.Outcome
	Quitting bool // user pressed q / ctrl+c before the outcome arrived
}

// NewAirdropProgress builds the model. The approve row is shown only when an
// approval is expected.
func NewAirdropProgress(title string, needsApproval bool, txURL func(string) string) AirdropProgressModel {
	m := AirdropProgressModel{Title: title, TxURL: txURL}
	if needsApproval {
		m.Rows = append(m.Rows, stepRow{step: airdrop.StepApprove, label: "Approve allowance"})
	}
	m.Rows = append(m.Rows, stepRow{step: airdrop.StepAirdrop, label: "Airdrop transfer"})
	return m
}

func progressTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg { return progressTickMsg{} })
}

func (m AirdropProgressModel) Init() tea.Cmd { return progressTick() }

func (m AirdropProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		}

	case progressTickMsg:
		m.Frame = (m.Frame + 1) % len(spinnerFrames)
		if m.Outcome != nil {
			return m, nil
		}
		return m, progressTick()

	case StepMsg:
		m.apply(airdrop.StepEvent(msg))

	case DoneMsg:
		out := msg.Outcome
		m.Outcome = &out
		return m, tea.Quit
	}
	return m, nil
}

func (m *AirdropProgressModel) apply(e airdrop.StepEvent) {
	idx := -1
	for i := range m.Rows {
		if m.Rows[i].step == e.Step {
			idx = i
		}
	}
	if idx < 0 {
		// An approval we did not expect; show it anyway.
		m.Rows = append([]stepRow{{step: e.Step, label: "Approve allowance"}}, m.Rows...)
		idx = 0
	}
	r := &m.Rows[idx]
	r.phase = e.Phase
	if e.Hash != (common.Hash{}) {
		r.hash = e.Hash.Hex()
	}
	if e.Err != nil {
		r.err = e.Err.Error()
	}
}

func (m AirdropProgressModel) View() string {
	var sb strings.Builder
	if m.Title != "" {
		sb.WriteString(StyleTitle.Render(m.Title) + "\n")
	}
	spin := StyleChain.Render(spinnerFrames[m.Frame])
	for _, r := range m.Rows {
		sb.WriteString(renderStep(r, spin, m.TxURL) + "\n")
	}
	if m.Outcome == nil && !m.Quitting {
		sb.WriteString(StyleMeta.Render("  press q to stop watching (transactions already sent stay sent)") + "\n")
	}
	return sb.String()
}

func renderStep(r stepRow, spin string, txURL func(string) string) string {
	var icon, state string
	switch r.phase {
	case "":
		icon, state = StyleMeta.Render("○"), Meta("pending")
	case airdrop.PhaseSubmitting:
		icon, state = spin, StyleInfo.Render("signing and broadcasting…")
	case airdrop.PhaseWaiting:
		icon, state = spin, StyleInfo.Render("waiting for confirmation…")
	case airdrop.PhaseConfirmed:
		icon, state = StyleSuccess.Render("✓"), StyleSuccess.Render("confirmed")
	case airdrop.PhaseFailed:
		icon, state = StyleError.Render("✗"), StyleError.Render(r.err)
	}
	line := fmt.Sprintf("  %s %-18s %s", icon, r.label, state)
	if r.hash != "" {
		line += "\n      " + Addr(r.hash)
		if txURL != nil {
			if u := txURL(r.hash); u != "" {
				line += "\n      " + Meta(u)
			}
		}
	}
	return line
}

// ProgramObserver forwards step events to a running Bubble Tea program.
func ProgramObserver(p *tea.Program) airdrop.Observer {
	return airdrop.ObserverFunc(func(e airdrop.StepEvent) { p.Send(StepMsg(e)) })
}

// LineObserver prints one plain line per step event, for non-terminal output.
func LineObserver(w io.Writer) airdrop.Observer {
	return airdrop.ObserverFunc(func(e airdrop.StepEvent) {
		fmt.Fprintln(w, StepLine(e))
	})
}

// StepLine renders a step event as a single line.
func StepLine(e airdrop.StepEvent) string {
	name := "airdrop"
	if e.Step == airdrop.StepApprove {
		name = "approve"
	}
	switch e.Phase {
	case airdrop.PhaseSubmitting:
		return Info(name + ": submitting")
	case airdrop.PhaseWaiting:
		return Info(name + ": waiting for " + e.Hash.Hex())
	case airdrop.PhaseConfirmed:
		return Success(name + ": confirmed " + e.Hash.Hex())
	case airdrop.PhaseFailed:
		msg := name + ": failed"
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return Err(msg)
	}
	return Meta(name + ": " + string(e.Phase))
}
