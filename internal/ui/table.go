package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Right aligns amounts.
type Column struct {
	Title string
	Width int
	Right bool
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table for recipient lists, wallets and chains.
type Table struct {
	Columns []Column
	Rows    []Row
	Marked  int // highlighted row, -1 for none
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, Marked: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Render returns the full table. Cells are padded by display width so that
// addresses shortened with "…" line up.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	var headers []string
	for _, col := range t.Columns {
		headers = append(headers, headerStyle.Render(fit(col.Title, col)))
	}
	sb.WriteString(strings.Join(headers, " "))
	sb.WriteString("\n")

	var divider []string
	for _, col := range t.Columns {
		divider = append(divider, StyleDim.Render(strings.Repeat("-", col.Width)))
	}
	sb.WriteString(strings.Join(divider, " "))
	sb.WriteString("\n")

	for i, row := range t.Rows {
		style := cellStyle
		if i == t.Marked {
			style = StyleSelected
		}
		cells := make([]string, 0, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells = append(cells, style.Render(fit(val, col)))
		}
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// fit pads or truncates s to exactly col.Width display cells.
func fit(s string, col Column) string {
	w := lipgloss.Width(s)
	if w > col.Width {
		r := []rune(s)
		for lipgloss.Width(string(r)) > col.Width && len(r) > 0 {
			r = r[:len(r)-1]
		}
		s, w = string(r), lipgloss.Width(string(r))
	}
	gap := strings.Repeat(" ", col.Width-w)
	if col.Right {
		return gap + s
	}
	return s + gap
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return Box(title, strings.TrimSuffix(sb.String(), "\n"))
}
