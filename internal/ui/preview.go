package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

// nullMarker is shown in place of missing cells.
const nullMarker = "null"

// maxCellWidth truncates long cells in previews.
const maxCellWidth = 32

// RenderTable draws the first limit rows of t as a bordered terminal table.
// limit <= 0 renders every row.
func (u *UI) RenderTable(t *table.Table, limit int) string {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(u.profile)

	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	missing := cell.Foreground(lipgloss.Color("241")).Faint(true)

	n := t.NumRows()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, n)
	nulls := make(map[[2]int]bool)
	for i := 0; i < n; i++ {
		row := make([]string, t.NumCols())
		for j, c := range t.Columns {
			v := c.Cells[i]
			if v == nil {
				row[j] = nullMarker
				nulls[[2]int{i, j}] = true
				continue
			}
			row[j] = truncate(table.FormatCell(v, c.Kind), maxCellWidth)
		}
		rows[i] = row
	}

	tb := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("241"))).
		Headers(t.ColumnNames()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == lgtable.HeaderRow:
				return header
			case nulls[[2]int{row, col}]:
				return missing
			default:
				return cell
			}
		})
	out := tb.String()
	if n < t.NumRows() {
		out += fmt.Sprintf("\n… %d more rows", t.NumRows()-n)
	}
	return out
}

func truncate(s string, width int) string {
	rs := []rune(s)
	if len(rs) <= width {
		return s
	}
	return string(rs[:width-1]) + "…"
}
