package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorSuccess   = lipgloss.Color("#00D26A") // success
	ColorWarning   = lipgloss.Color("#FFB800") // warnings, prompts
	ColorError     = lipgloss.Color("#FF4444") // errors, danger
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF") // token amounts
	ColorMeta      = lipgloss.Color("#555555") // metadata
	ColorBorder    = lipgloss.Color("#1E3A5F") // borders
	ColorChain     = lipgloss.Color("#9B5DE5") // chain names
	ColorHighlight = lipgloss.Color("#F15BB5") // selected rows
	ColorInfo      = lipgloss.Color("#4EA8DE") // progress, notices
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleChain   = lipgloss.NewStyle().Foreground(ColorChain).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleHint    = lipgloss.NewStyle().Foreground(ColorMeta).Italic(true)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true).
			Underline(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorChain).
			Bold(true).
			MarginBottom(1)

	StyleDim = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Banner returns the w3drop ASCII banner.
func Banner() string {
	art := `
  ██╗    ██╗██████╗ ██████╗ ██████╗  ██████╗ ██████╗
  ██║    ██║╚════██╗██╔══██╗██╔══██╗██╔═══██╗██╔══██╗
  ██║ █╗ ██║ █████╔╝██║  ██║██████╔╝██║   ██║██████╔╝
  ██║███╗██║ ╚═══██╗██║  ██║██╔══██╗██║   ██║██╔═══╝
  ╚███╔███╔╝██████╔╝██████╔╝██║  ██║╚██████╔╝██║
   ╚══╝╚══╝ ╚═════╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚═╝`

	tagline := StyleMeta.Render("     ERC-20 airdrops from the terminal  ⚡  v" + version)
	features := StyleMeta.Render("  ✦ approve + airdrop in one flow  ✦ keyring wallets  ✦ smart RPC")

	return StyleChain.Render(art) + "\n" + tagline + "\n" + features + "\n"
}

// SetVersion sets the version shown in Banner.
func SetVersion(v string) { version = v }

var version = "dev"

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats a neutral notice.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a follow-up suggestion.
func Hint(msg string) string { return StyleHint.Render("💡 " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// ChainName formats a chain name.
func ChainName(c string) string { return StyleChain.Render(c) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

// Amount renders an amount with its symbol, which may be empty.
func Amount(v, symbol string) string {
	if symbol == "" {
		return Val(v)
	}
	return Val(v) + " " + Meta(symbol)
}

// Box wraps body in the standard rounded border with an optional title.
func Box(title, body string) string {
	if title != "" {
		body = StyleTitle.Render(title) + "\n" + body
	}
	return StyleBorder.Render(body)
}
