package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	DefaultNetwork  string
	NetworkMode     string
	RPCAlgorithm    string
	AirdropContract string // empty when skipped
	Cancelled       bool
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepMode
	stepAlgorithm
	stepContract
	stepDone
)

// WizardModel is the Bubble Tea model behind `w3drop init`.
type WizardModel struct {
	step     wizardStep
	result   WizardResult
	networks []string
	cursor   int
	choices  []string
	input    string
}

var (
	wizardModes      = []string{"mainnet", "testnet"}
	wizardAlgorithms = []string{"fastest", "round-robin", "failover"}
)

// NewWizard starts the wizard on the network menu.
func NewWizard(networks []string) WizardModel {
	return WizardModel{step: stepNetwork, networks: networks, choices: networks}
}

// Result returns the answers gathered so far.
func (m WizardModel) Result() WizardResult { return m.result }

// Done reports whether every step has been answered.
func (m WizardModel) Done() bool { return m.step == stepDone }

func (m WizardModel) Init() tea.Cmd { return nil }

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.result.Cancelled = true
		return m, tea.Quit

	case "up", "k":
		if m.step != stepContract && m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.step != stepContract && m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case "enter":
		m.apply()
		m.advance()

	case "backspace":
		if m.step == stepContract && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if m.step == stepContract && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *WizardModel) apply() {
	pick := func() string {
		if m.cursor < len(m.choices) {
			return m.choices[m.cursor]
		}
		return ""
	}
	switch m.step {
	case stepNetwork:
		m.result.DefaultNetwork = pick()
	case stepMode:
		m.result.NetworkMode = pick()
	case stepAlgorithm:
		m.result.RPCAlgorithm = pick()
	case stepContract:
		// Pasted addresses sometimes carry brackets or quotes.
		m.result.AirdropContract = strings.Trim(strings.TrimSpace(m.input), `[]"'`)
	}
}

func (m *WizardModel) advance() {
	m.step++
	m.cursor = 0
	switch m.step {
	case stepMode:
		m.choices = wizardModes
	case stepAlgorithm:
		m.choices = wizardAlgorithms
	case stepContract:
		m.choices = nil
		m.input = ""
	}
}

func (m WizardModel) View() string {
	var s string
	switch m.step {
	case stepNetwork:
		s = renderMenu("Select default network:", m.choices, m.cursor)
	case stepMode:
		s = renderMenu("Select network mode:", m.choices, m.cursor)
	case stepAlgorithm:
		s = renderMenu("Select RPC algorithm:", m.choices, m.cursor)
	case stepContract:
		s = StyleTitle.Render("Airdrop contract on "+m.result.DefaultNetwork+" (optional)") + "\n\n"
		s += StyleMeta.Render("Paste the deployed contract address, or press Enter to skip:") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}
	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
	return s
}

// RunWizard launches the interactive setup wizard.
func RunWizard(networks []string) (*WizardResult, error) {
	final, err := tea.NewProgram(NewWizard(networks)).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(WizardModel).Result()
	return &result, nil
}
