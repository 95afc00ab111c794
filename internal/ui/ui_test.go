package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/w3drop/internal/airdrop"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// styles
// ---------------------------------------------------------------------------

func TestFormattersKeepMessage(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Hint":      Hint,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test")
		})
	}
}

func TestFormatterPrefixes(t *testing.T) {
	assert.Contains(t, Success("done"), "✓")
	assert.Contains(t, Warn("careful"), "⚠")
	assert.Contains(t, Err("failed"), "✗")
	assert.Contains(t, Info("note"), "ℹ")
	assert.NotEqual(t, Info("m"), Hint("m"))
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
	assert.Equal(t, "0x1234…5678", TruncateAddr("0x1234567890abcdef1234567890abcdef12345678"))
	assert.Equal(t, "", TruncateAddr(""))
}

func TestAmount(t *testing.T) {
	assert.Contains(t, Amount("1.5", "TT"), "TT")
	assert.Contains(t, Amount("1.5", ""), "1.5")
}

func TestBanner(t *testing.T) {
	SetVersion("9.9.9")
	b := Banner()
	assert.Contains(t, b, "9.9.9")
	assert.Contains(t, b, "airdrop")
}

// ---------------------------------------------------------------------------
// KeyValueBlock / Table
// ---------------------------------------------------------------------------

func TestKeyValueBlockKeepsOrder(t *testing.T) {
	result := KeyValueBlock("Airdrop", [][2]string{
		{"Token", "TT"},
		{"Recipients", "2"},
		{"Total", "3"},
	})
	assert.Contains(t, result, "Airdrop")
	a, b, c := strings.Index(result, "Token"), strings.Index(result, "Recipients"), strings.Index(result, "Total")
	require.Greater(t, a, -1)
	assert.Less(t, a, b)
	assert.Less(t, b, c)
	assert.Contains(t, result, "╭")
	assert.Contains(t, result, "╰")
}

func TestKeyValueBlockNoPairs(t *testing.T) {
	assert.Contains(t, KeyValueBlock("Empty", nil), "Empty")
}

func TestTableRender(t *testing.T) {
	tbl := NewTable([]Column{{Title: "#", Width: 3}, {Title: "Recipient", Width: 12}, {Title: "Amount", Width: 8, Right: true}})
	tbl.AddRow(Row{"1", TruncateAddr("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"), "1.5"})
	tbl.AddRow(Row{"2"})
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, -1, tbl.Marked)

	out := tbl.Render()
	assert.Contains(t, out, "Recipient")
	assert.Contains(t, out, "0xbbbb…bbbb")
	assert.Contains(t, out, "---")
	assert.Equal(t, 4, strings.Count(out, "\n"))
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab  ", fit("ab", Column{Width: 4}))
	assert.Equal(t, "  ab", fit("ab", Column{Width: 4, Right: true}))
	assert.Equal(t, "abcd", fit("abcdef", Column{Width: 4}))
	assert.Equal(t, "0x12…5678 ", fit("0x12…5678", Column{Width: 10}))
}

// ---------------------------------------------------------------------------
// Confirm
// ---------------------------------------------------------------------------

func TestConfirmFrom(t *testing.T) {
	cases := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false}
	for in, want := range cases {
		var out bytes.Buffer
		got := ConfirmFrom(strings.NewReader(in), &out, "Send airdrop?")
		assert.Equal(t, want, got, "input %q", in)
		assert.Contains(t, out.String(), "[y/N]")
	}
}

// ---------------------------------------------------------------------------
// Spinner
// ---------------------------------------------------------------------------

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinnerTo(&buf, "reading allowance")
	s.Start()
	s.Stop()
	s.StopWithMsg("done")
	assert.Contains(t, buf.String(), "reading allowance")
	assert.True(t, strings.HasSuffix(buf.String(), "done\n"))
}

// ---------------------------------------------------------------------------
// AirdropProgressModel
// ---------------------------------------------------------------------------

func step(m tea.Model, msg tea.Msg) (AirdropProgressModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AirdropProgressModel), cmd
}

func TestProgressRows(t *testing.T) {
	assert.Len(t, NewAirdropProgress("", true, nil).Rows, 2)
	assert.Len(t, NewAirdropProgress("", false, nil).Rows, 1)
}

func TestProgressFollowsEvents(t *testing.T) {
	hash := common.HexToHash("0xabc")
	m := NewAirdropProgress("Airdrop", true, func(h string) string { return "https://explorer/tx/" + h })

	m, _ = step(m, StepMsg{Step: airdrop.StepApprove, Phase: airdrop.PhaseSubmitting})
	assert.Contains(t, m.View(), "signing")

	m, _ = step(m, StepMsg{Step: airdrop.StepApprove, Phase: airdrop.PhaseWaiting, Hash: hash})
	view := m.View()
	assert.Contains(t, view, "waiting for confirmation")
	assert.Contains(t, view, hash.Hex())
	assert.Contains(t, view, "https://explorer/tx/"+hash.Hex())

	m, _ = step(m, StepMsg{Step: airdrop.StepApprove, Phase: airdrop.PhaseConfirmed, Hash: hash})
	m, _ = step(m, StepMsg{Step: airdrop.StepAirdrop, Phase: airdrop.PhaseFailed, Err: errors.New("airdrop transaction reverted")})
	view = m.View()
	assert.Contains(t, view, "confirmed")
	assert.Contains(t, view, "airdrop transaction reverted")
}

func TestProgressUnexpectedApproval(t *testing.T) {
	m := NewAirdropProgress("", false, nil)
	m, _ = step(m, StepMsg{Step: airdrop.StepApprove, Phase: airdrop.PhaseSubmitting})
	require.Len(t, m.Rows, 2)
	assert.Equal(t, airdrop.StepApprove, m.Rows[0].step)
}

func TestProgressQuitsOnDone(t *testing.T) {
	m := NewAirdropProgress("", false, nil)
	m, cmd := step(m, DoneMsg{Outcome: airdrop.Outcome{Status: airdrop.StatusConfirmed}})
	require.NotNil(t, m.Outcome)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Quitting)
}

func TestProgressQuitKey(t *testing.T) {
	m := NewAirdropProgress("", false, nil)
	m, cmd := step(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.Quitting)
	require.NotNil(t, cmd)
}

func TestStepLine(t *testing.T) {
	hash := common.HexToHash("0x01")
	assert.Contains(t, StepLine(airdrop.StepEvent{Step: airdrop.StepApprove, Phase: airdrop.PhaseSubmitting}), "approve: submitting")
	assert.Contains(t, StepLine(airdrop.StepEvent{Step: airdrop.StepAirdrop, Phase: airdrop.PhaseConfirmed, Hash: hash}), hash.Hex())
	assert.Contains(t, StepLine(airdrop.StepEvent{Step: airdrop.StepAirdrop, Phase: airdrop.PhaseFailed, Err: errors.New("boom")}), "boom")

	var buf bytes.Buffer
	LineObserver(&buf).OnStep(airdrop.StepEvent{Step: airdrop.StepAirdrop, Phase: airdrop.PhaseWaiting, Hash: hash})
	assert.Contains(t, buf.String(), "airdrop: waiting for")
}

// ---------------------------------------------------------------------------
// WizardModel
// ---------------------------------------------------------------------------

func press(m tea.Model, keys ...tea.KeyMsg) WizardModel {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m.(WizardModel)
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestWizardCollectsAnswers(t *testing.T) {
	m := press(NewWizard([]string{"anvil", "base", "ethereum"}),
		keyDown, keyEnter, // base
		keyDown, keyEnter, // testnet
		keyEnter, // fastest
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" [0x5FbDB2315678afecb367f032d93F642f64180aa3] ")},
		keyEnter,
	)
	require.True(t, m.Done())
	r := m.Result()
	assert.Equal(t, "base", r.DefaultNetwork)
	assert.Equal(t, "testnet", r.NetworkMode)
	assert.Equal(t, "fastest", r.RPCAlgorithm)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", r.AirdropContract)
	assert.False(t, r.Cancelled)
}

func TestWizardSkipContract(t *testing.T) {
	m := press(NewWizard([]string{"anvil"}), keyEnter, keyEnter, keyEnter, keyEnter)
	assert.True(t, m.Done())
	assert.Empty(t, m.Result().AirdropContract)
	assert.Contains(t, m.View(), "Setup complete")
}

func TestWizardCancel(t *testing.T) {
	m := press(NewWizard([]string{"anvil"}), tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.Result().Cancelled)
	assert.False(t, m.Done())
}
