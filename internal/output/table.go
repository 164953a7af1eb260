// Package output provides terminal output utilities for the flatpak CLI.
//
// The table printer is the sink every reporting command renders through:
// callers add cells row by row and print once at the end, so column widths
// always fit the data. ANSI styling is gated on stdout being a TTY and the
// NO_COLOR convention.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
)

// IsColorEnabled returns true if ANSI codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Table accumulates rows of display strings and renders them with
// width-fitted columns.
type Table struct {
	titles  []string
	rows    [][]string
	current []string
}

// NewTable creates a table. With no titles the header row is omitted.
func NewTable(titles ...string) *Table {
	return &Table{titles: titles}
}

// AddColumn appends one cell to the row being built.
func (t *Table) AddColumn(cell string) {
	t.current = append(t.current, cell)
}

// FinishRow completes the row being built.
func (t *Table) FinishRow() {
	t.rows = append(t.rows, t.current)
	t.current = nil
}

// Row appends a complete row. It satisfies the history engine's sink
// interface.
func (t *Table) Row(cells []string) error {
	t.rows = append(t.rows, cells)
	return nil
}

// Len returns the number of finished rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table to w. A table without rows renders nothing at
// all, not even the header.
func (t *Table) Render(w io.Writer) {
	if len(t.rows) == 0 {
		return
	}
	widths := t.columnWidths()

	if len(t.titles) > 0 {
		header := formatRow(t.titles, widths)
		if IsColorEnabled() && w == io.Writer(os.Stdout) {
			fmt.Fprintln(w, ansiBold+header+ansiReset)
		} else {
			fmt.Fprintln(w, header)
		}
	}

	for _, row := range t.rows {
		fmt.Fprintln(w, formatRow(row, widths))
	}
}

// Print renders the table to stdout.
func (t *Table) Print() {
	t.Render(os.Stdout)
}

func (t *Table) columnWidths() []int {
	var widths []int
	grow := func(row []string) {
		for i, cell := range row {
			for len(widths) <= i {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	grow(t.titles)
	for _, row := range t.rows {
		grow(row)
	}
	return widths
}

// formatRow pads every cell but the last to its column width. Padding by
// rune count keeps multibyte cells like "✓" aligned.
func formatRow(row []string, widths []int) string {
	var sb strings.Builder
	for i, cell := range row {
		if i == len(row)-1 {
			sb.WriteString(cell)
			break
		}
		sb.WriteString(cell)
		pad := widths[i] - utf8.RuneCountInString(cell)
		if pad < 0 {
			pad = 0
		}
		sb.WriteString(strings.Repeat(" ", pad+1))
	}
	return strings.TrimRight(sb.String(), " ")
}
