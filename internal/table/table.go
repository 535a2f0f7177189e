// Package table renders aligned ASCII tables. Cell contents may carry
// ANSI color codes; alignment is computed on the visible width.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Alignment positions cell content within its column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Table accumulates rows and renders them with box-drawing separators.
type Table struct {
	w         io.Writer
	header    []string
	rows      [][]string
	colAlign  []Alignment
	headAlign []Alignment
}

// NewTable creates a table that renders to w.
func NewTable(w io.Writer) *Table {
	return &Table{w: w}
}

// WithHeader sets the header row.
func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

// WithColumnAlignment sets per-column alignment for body rows. Columns
// without an entry default to AlignLeft.
func (t *Table) WithColumnAlignment(a []Alignment) *Table {
	t.colAlign = a
	return t
}

// WithHeaderAlignment sets per-column alignment for the header row.
func (t *Table) WithHeaderAlignment(a []Alignment) *Table {
	t.headAlign = a
	return t
}

// WithRows replaces the body rows.
func (t *Table) WithRows(rows [][]string) *Table {
	t.rows = rows
	return t
}

// Append adds one body row.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

// Render writes the table.
func (t *Table) Render() {
	widths := t.columnWidths()
	sep := separator(widths)

	fmt.Fprint(t.w, sep)
	if len(t.header) > 0 {
		t.writeRow(t.header, widths, t.headAlign)
		fmt.Fprint(t.w, sep)
	}
	for _, row := range t.rows {
		t.writeRow(row, widths, t.colAlign)
	}
	fmt.Fprint(t.w, sep)
}

func (t *Table) columnWidths() []int {
	n := len(t.header)
	for _, row := range t.rows {
		if len(row) > n {
			n = len(row)
		}
	}
	widths := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
			if w := visibleWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	return widths
}

func (t *Table) writeRow(row []string, widths []int, aligns []Alignment) {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		a := AlignLeft
		if i < len(aligns) {
			a = aligns[i]
		}
		b.WriteString(" ")
		b.WriteString(align(cell, w, a))
		b.WriteString(" |")
	}
	b.WriteString("\n")
	fmt.Fprint(t.w, b.String())
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteString("+")
	}
	b.WriteString("\n")
	return b.String()
}

func align(s string, width int, a Alignment) string {
	pad := width - visibleWidth(s)
	if pad <= 0 {
		return s
	}
	switch a {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func visibleWidth(s string) int {
	return len([]rune(stripAnsi(s)))
}
